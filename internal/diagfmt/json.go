package diagfmt

import (
	"encoding/json"
	"io"

	"quill/internal/diag"
	"quill/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Dropped     int              `json:"dropped,omitempty"`
}

func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{
		File:      formatPath(fs, span.File, pathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, n)
	for _, d := range items[:n] {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}
		diagnostics = append(diagnostics, dj)
	}
	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
		Dropped:     bag.Dropped() + len(items) - n,
	}
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
