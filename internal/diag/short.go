package diag

import (
	"fmt"
	"sort"
	"strings"

	"quill/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShort renders diagnostics one per line as
// "<severity> <CODE> <path>:<line>:<col> <message>", sorted deterministically.
// It is used by golden tests and the CLI's --quiet output.
func FormatShort(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	rendered := make([]shortDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, resolve(fs, d.Primary, severityLabel(d.Severity), d.Code, d.Message))
		if includeNotes {
			for _, note := range d.Notes {
				rendered = append(rendered, resolve(fs, note.Span, "note", d.Code, note.Msg))
			}
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		return di.Code < dj.Code
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func resolve(fs *source.FileSet, span source.Span, sev string, code Code, msg string) shortDiagnostic {
	start, _ := fs.Resolve(span)
	return shortDiagnostic{
		Severity: sev,
		Code:     code.ID(),
		Path:     fs.DisplayPath(span.File),
		Line:     start.Line,
		Column:   start.Col,
		Message:  sanitizeMessage(msg),
	}
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
