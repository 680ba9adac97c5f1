package assemble

import (
	"fmt"
	"strings"

	"quill/internal/lexer"
	"quill/internal/token"
)

// Part is one element of the assembled template.
type Part struct {
	Kind    token.Kind // token.Text for literal text
	Text    string     // literal text, or the directive source
	Payload string
	Line    uint32
}

// Builder accumulates parts. The zero value is ready to use.
type Builder struct {
	parts   []Part
	trimmed int // bytes removed by formatting hints
}

// Add appends the token of res after applying its formatting hint to the
// pending literal text.
func (b *Builder) Add(res lexer.Result) {
	switch res.Format {
	case token.FormatTrimLineBreakAndSpaces:
		b.trimTail(removeSpaceToLastLineBreak)
	case token.FormatTrimSpacesIfLineBreak:
		b.trimTail(removeSpaceTillLastLineBreak)
	}

	tok := res.Token
	switch tok.Kind {
	case token.Text:
		b.appendText(tok.Text, tok.Line)
	case token.Escape:
		b.appendText(tok.Payload, tok.Line)
	case token.Comment, token.Sensor, token.EOF:
		// no output
	default:
		b.parts = append(b.parts, Part{Kind: tok.Kind, Text: tok.Text, Payload: tok.Payload, Line: tok.Line})
	}
}

// AddAll drains tz into the builder.
func (b *Builder) AddAll(tz *lexer.Tokenizer) error {
	for res, err := range tz.All() {
		if err != nil {
			return err
		}
		b.Add(res)
	}
	return nil
}

func (b *Builder) appendText(s string, line uint32) {
	if s == "" {
		return
	}
	if n := len(b.parts); n > 0 && b.parts[n-1].Kind == token.Text {
		b.parts[n-1].Text += s
		return
	}
	b.parts = append(b.parts, Part{Kind: token.Text, Text: s, Line: line})
}

// trimTail applies fn to the trailing literal part, if the builder ends with
// one. atStart tells fn whether that part opens the output.
func (b *Builder) trimTail(fn func(s string, atStart bool) string) {
	n := len(b.parts)
	if n == 0 || b.parts[n-1].Kind != token.Text {
		return
	}
	s := b.parts[n-1].Text
	out := fn(s, n == 1)
	b.trimmed += len(s) - len(out)
	if out == "" {
		b.parts = b.parts[:n-1]
		return
	}
	b.parts[n-1].Text = out
}

// Parts returns the assembled parts.
func (b *Builder) Parts() []Part { return b.parts }

// Trimmed returns how many bytes formatting hints removed.
func (b *Builder) Trimmed() int { return b.trimmed }

// Text returns the literal output with directives removed.
func (b *Builder) Text() string {
	var sb strings.Builder
	for _, p := range b.parts {
		if p.Kind == token.Text {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Render returns the output with every directive shown as a {{kind payload}}
// placeholder.
func (b *Builder) Render() string {
	var sb strings.Builder
	for _, p := range b.parts {
		if p.Kind == token.Text {
			sb.WriteString(p.Text)
			continue
		}
		if p.Payload == "" {
			fmt.Fprintf(&sb, "{{%s}}", p.Kind)
			continue
		}
		fmt.Fprintf(&sb, "{{%s %s}}", p.Kind, p.Payload)
	}
	return sb.String()
}
