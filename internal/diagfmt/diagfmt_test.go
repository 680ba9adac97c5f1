package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"quill/internal/diag"
	"quill/internal/lexer"
	"quill/internal/source"
)

func sampleBag() (*diag.Bag, *source.FileSet) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("page.html", []byte("<p>\n\tab @* open\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewWarning(diag.LexUnterminatedComment, source.Span{File: id, Start: 8, End: 9}, "comment is never closed").
		WithNote(source.Span{File: id, Start: 0, End: 3}, "enclosing tag"))
	return bag, fs
}

func TestPretty(t *testing.T) {
	bag, fs := sampleBag()
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowSource: true, ShowNotes: true})

	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "page.html:2:5: WARNING LEX1002: comment is never closed" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "    2 | \tab @* open" {
		t.Fatalf("source = %q", lines[1])
	}
	// tab expands to four cells, then "ab "
	if want := strings.Repeat(" ", 8) + strings.Repeat(" ", 7) + "^"; lines[2] != want {
		t.Fatalf("caret = %q, want %q", lines[2], want)
	}
	if !strings.Contains(lines[3], "note: page.html:1:1: enclosing tag") {
		t.Fatalf("note = %q", lines[3])
	}
}

func TestJSON(t *testing.T) {
	bag, fs := sampleBag()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Diagnostics[0].Code != "LEX1002" || out.Diagnostics[0].Location.StartLine != 2 {
		t.Fatalf("output = %+v", out)
	}
	if out.Diagnostics[0].Notes != nil {
		t.Fatalf("notes must be omitted by default")
	}
}

func TestTokensOutput(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.html", []byte("a\n@if (x) {")))
	tz, err := lexer.New(file, lexer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	results, err := tz.Collect()
	if err != nil {
		t.Fatal(err)
	}
	out := BuildTokensOutput(results, fs)
	if len(out) != 2 {
		t.Fatalf("tokens = %+v", out)
	}
	if got := out[1]; got.Kind != "BlockOpen" || got.Payload != "if" || got.Line != 2 || got.Col != 1 ||
		got.Format != "trim-leading-spaces-if-line-break" || got.Parser != "block" {
		t.Fatalf("token = %+v", got)
	}

	var buf bytes.Buffer
	if err := FormatTokensPretty(&buf, results, fs, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `payload="if"`) || !strings.Contains(buf.String(), "[string-run]") {
		t.Fatalf("pretty tokens:\n%s", buf.String())
	}
}
