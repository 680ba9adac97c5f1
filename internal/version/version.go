// Package version holds the build identity of the quill CLI. The variables
// are overridden at build time via -ldflags "-X quill/internal/version.Version=...".
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// String returns "quill <version> (<commit>, <date>)", omitting empty parts.
func String() string {
	return render(Version)
}

// Pretty is String with the major, minor and patch numbers colored.
func Pretty() string {
	return render(colorize(Version))
}

func render(ver string) string {
	var b strings.Builder
	b.WriteString("quill ")
	b.WriteString(ver)
	var extra []string
	if GitCommit != "" {
		commit := GitCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		extra = append(extra, commit)
	}
	if BuildDate != "" {
		extra = append(extra, BuildDate)
	}
	if len(extra) > 0 {
		b.WriteString(" (" + strings.Join(extra, ", ") + ")")
	}
	return b.String()
}

// colorize paints "1.2.3-rc" as major.minor.patch; anything that does not
// have three dot-separated parts is returned as is.
func colorize(ver string) string {
	core, suffix := ver, ""
	if i := strings.IndexAny(ver, "-+"); i >= 0 {
		core, suffix = ver[:i], ver[i:]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return ver
	}
	return majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2]) + suffix
}
