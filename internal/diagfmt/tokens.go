package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"quill/internal/lexer"
	"quill/internal/source"
	"quill/internal/token"
)

// TokenOutput is the JSON form of one tokenizer result.
type TokenOutput struct {
	Kind    string      `json:"kind"`
	Text    string      `json:"text"`
	Payload string      `json:"payload,omitempty"`
	Sense   string      `json:"sense,omitempty"`
	Format  string      `json:"format,omitempty"`
	Parser  string      `json:"parser"`
	Span    source.Span `json:"span"`
	Line    uint32      `json:"line"`
	Col     uint32      `json:"col"`
}

// FormatTokensPretty выводит токены в человекочитаемом формате
func FormatTokensPretty(w io.Writer, results []lexer.Result, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for i, res := range results {
		tok := res.Token
		startPos, endPos := fs.Resolve(tok.Span)

		kind := tok.Kind.String()
		if tok.IsSensor() {
			kind = p.info(kind)
		} else if tok.Kind != token.Text {
			kind = p.code(kind)
		}
		if _, err := fmt.Fprintf(w, "%4d: %-12s %q at %d:%d-%d:%d", i+1, kind, tok.Text,
			startPos.Line, startPos.Col, endPos.Line, endPos.Col); err != nil {
			return err
		}
		if tok.Payload != "" {
			fmt.Fprintf(w, " payload=%q", tok.Payload)
		}
		if tok.IsSensor() {
			fmt.Fprintf(w, " sense=%s", tok.Sense)
		}
		if res.Format != token.FormatNone {
			fmt.Fprintf(w, " %s", p.dim(res.Format.String()))
		}
		fmt.Fprintf(w, " %s\n", p.dim("["+res.Parser+"]"))
	}
	return nil
}

// BuildTokensOutput converts results to their JSON form.
func BuildTokensOutput(results []lexer.Result, fs *source.FileSet) []TokenOutput {
	out := make([]TokenOutput, 0, len(results))
	for _, res := range results {
		tok := res.Token
		pos, _ := fs.Resolve(tok.Span)
		to := TokenOutput{
			Kind:    tok.Kind.String(),
			Text:    tok.Text,
			Payload: tok.Payload,
			Parser:  res.Parser,
			Span:    tok.Span,
			Line:    pos.Line,
			Col:     pos.Col,
		}
		if tok.IsSensor() {
			to.Sense = tok.Sense.String()
		}
		if res.Format != token.FormatNone {
			to.Format = res.Format.String()
		}
		out = append(out, to)
	}
	return out
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, results []lexer.Result, fs *source.FileSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildTokensOutput(results, fs))
}
