package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"quill/internal/diag"
	"quill/internal/source"
)

type palette struct {
	err, warn, info, code, path, caret, dim func(a ...any) string
}

func paint(on bool, attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.SprintFunc()
}

func newPalette(on bool) palette {
	return palette{
		err:   paint(on, color.FgRed, color.Bold),
		warn:  paint(on, color.FgYellow, color.Bold),
		info:  paint(on, color.FgCyan),
		code:  paint(on, color.Bold),
		path:  paint(on, color.FgWhite, color.Bold),
		caret: paint(on, color.FgGreen, color.Bold),
		dim:   paint(on, color.Faint),
	}
}

func (p palette) severity(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return p.err(s.String())
	case diag.SevWarning:
		return p.warn(s.String())
	}
	return p.info(s.String())
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		start, _ := fs.Resolve(d.Primary)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.path(fmt.Sprintf("%s:%d:%d", formatPath(fs, d.Primary.File, opts.PathMode), start.Line, start.Col)),
			p.severity(d.Severity), p.code(d.Code.ID()), d.Message)
		if opts.ShowSource {
			writeSourceLine(w, fs, d.Primary, p)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			ns, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.dim("note:"),
				formatPath(fs, n.Span.File, opts.PathMode), ns.Line, ns.Col, n.Msg)
		}
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "%s\n", p.dim(fmt.Sprintf("... %d more diagnostics dropped", n)))
	}
}

// writeSourceLine prints the first line of sp and underlines the span on it.
// Widths are measured in terminal cells so wide runes keep the caret aligned.
func writeSourceLine(w io.Writer, fs *source.FileSet, sp source.Span, p palette) {
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)
	line := strings.TrimRight(f.GetLine(start.Line), "\r")
	if line == "" && sp.Empty() {
		return
	}
	startCol := int(start.Col) - 1
	endCol := len(line)
	if end.Line == start.Line {
		endCol = int(end.Col) - 1
	}
	startCol = min(max(startCol, 0), len(line))
	endCol = min(max(endCol, startCol), len(line))

	pad := runewidth.StringWidth(expandTabs(line[:startCol]))
	width := max(runewidth.StringWidth(expandTabs(line[startCol:endCol])), 1)

	gutter := fmt.Sprintf("%5d | ", start.Line)
	fmt.Fprintf(w, "%s%s\n", p.dim(gutter), line)
	fmt.Fprintf(w, "%s%s%s\n", strings.Repeat(" ", len(gutter)), strings.Repeat(" ", pad),
		p.caret("^"+strings.Repeat("~", width-1)))
}

func expandTabs(s string) string { return strings.ReplaceAll(s, "\t", "    ") }
