package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var (
	versionFormat   string
	versionShowFull bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "include commit and build date, unknown when missing")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the quill version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch strings.ToLower(versionFormat) {
		case "json":
			return renderVersionJSON(cmd.OutOrStdout(), versionShowFull)
		case "pretty":
			if _, err := useColor(cmd, os.Stdout); err != nil {
				return err
			}
			renderVersionPretty(cmd.OutOrStdout(), versionShowFull)
			return nil
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}

func renderVersionPretty(out io.Writer, full bool) {
	fmt.Fprintln(out, version.Pretty())
	if full {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(version.GitCommit))
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(version.BuildDate))
	}
}

func renderVersionJSON(out io.Writer, full bool) error {
	payload := versionPayload{
		Tool:    "quill",
		Version: strings.TrimSpace(version.Version),
	}
	if full {
		payload.GitCommit = valueOrUnknown(version.GitCommit)
		payload.BuildDate = valueOrUnknown(version.BuildDate)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func valueOrUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return s
}
