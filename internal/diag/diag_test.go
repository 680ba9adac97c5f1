package diag

import (
	"testing"

	"quill/internal/source"
)

func TestBagLimitAndDropped(t *testing.T) {
	b := NewBag(2)
	for i := 0; i < 3; i++ {
		b.Add(NewWarning(LexUnrecognizedInput, source.Span{Start: uint32(i), End: uint32(i + 1)}, "x"))
	}
	if b.Len() != 2 || b.Dropped() != 1 {
		t.Fatalf("Len=%d Dropped=%d", b.Len(), b.Dropped())
	}
	if b.HasErrors() || !b.HasWarnings() {
		t.Fatalf("severity flags wrong")
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(0)
	b.Add(NewWarning(LexUnrecognizedInput, source.Span{Start: 5, End: 6}, "late"))
	b.Add(NewError(LexUnclosedBlock, source.Span{Start: 1, End: 2}, "err"))
	b.Add(NewWarning(LexUnrecognizedInput, source.Span{Start: 1, End: 2}, "warn"))
	b.Add(NewWarning(LexUnrecognizedInput, source.Span{Start: 5, End: 6}, "dup"))
	b.Sort()
	b.Dedup()

	items := b.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items after dedup, got %d", len(items))
	}
	if items[0].Severity != SevError || items[1].Message != "warn" || items[2].Message != "late" {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LexUnrecognizedInput: "LEX1001",
		IOLoadFileError:      "IO4001",
		CfgParseError:        "CFG5001",
		UnknownCode:          "E0000",
	}
	for c, want := range cases {
		if c.ID() != want {
			t.Errorf("%d.ID() = %q, want %q", c, c.ID(), want)
		}
	}
	if Code(1234).Title() != "Unknown error" {
		t.Errorf("unknown code title")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{Start: 1, End: 2}
	r.Report(LexUnrecognizedInput, SevWarning, sp, "m", nil)
	r.Report(LexUnrecognizedInput, SevWarning, sp, "m", nil)
	ReportWarning(r, LexUnrecognizedInput, sp, "other").WithNote(sp, "n").Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
	if len(bag.Items()[1].Notes) != 1 {
		t.Fatalf("note lost")
	}
	if r.Suppressed() != 1 {
		t.Fatalf("suppressed = %d, want 1", r.Suppressed())
	}
}

func TestWithNoteDoesNotAlias(t *testing.T) {
	base := NewWarning(LexUnclosedBlock, source.Span{}, "open")
	base.Notes = make([]Note, 0, 4)
	a := base.WithNote(source.Span{Start: 1}, "a")
	b := base.WithNote(source.Span{Start: 2}, "b")
	if a.Notes[0].Msg != "a" || b.Notes[0].Msg != "b" {
		t.Fatalf("notes share storage: %v / %v", a.Notes, b.Notes)
	}
	if len(base.Notes) != 0 {
		t.Fatalf("base modified: %v", base.Notes)
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("page.html", []byte("a\nb\n"))
	diags := []Diagnostic{
		NewError(LexUnclosedBlock, source.Span{File: id, Start: 2, End: 3}, "block\nnot closed").
			WithNote(source.Span{File: id, Start: 0, End: 1}, "opened here"),
		NewWarning(LexUnrecognizedInput, source.Span{File: id, Start: 0, End: 1}, "stray"),
	}

	want := "note LEX1005 page.html:1:1 opened here\n" +
		"warning LEX1001 page.html:1:1 stray\n" +
		"error LEX1005 page.html:2:1 block not closed"
	if got := FormatShort(diags, fs, true); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\ngot:\n%s", want, got)
	}
}
