package lexer

import (
	"bytes"

	"quill/internal/token"
)

// scriptParser recognizes an embedded host-language block: marker followed
// by the block open delimiter ("@{ ... }"). The body may nest braces and
// contain literals and comments holding delimiter-like characters. An
// unterminated block is declined.
type scriptParser struct{}

func (scriptParser) Name() string { return StageScript.String() }

func (p scriptParser) Attempt(ctx *Context) (Result, bool) {
	syn := ctx.Syntax()
	b := ctx.Remain()
	if len(b) < 1+len(syn.BlockOpen) || b[0] != syn.Marker || !bytes.HasPrefix(b[1:], []byte(syn.BlockOpen)) {
		return Result{}, false
	}
	bodyStart := 1 + len(syn.BlockOpen)
	bodyEnd, ok := ctx.scriptBody(bodyStart, []byte(syn.BlockClose))
	if !ok {
		return Result{}, false
	}
	m := ctx.Mark()
	ctx.Advance(bodyEnd + len(syn.BlockClose))
	return result(ctx.TokenFrom(m, token.Script, string(b[bodyStart:bodyEnd])), token.FormatNone, p.Name())
}

// walkScriptBody returns the index of the block close delimiter that ends
// the script body starting at i. tr, when set, records every step.
func walkScriptBody(b []byte, i int, closing []byte, tr *scanTrace) (int, bool) {
	depth := 0
	// после незакрытого "/*" дальнейшие "/*" тоже не закрыты
	openComment := false
	for i < len(b) {
		closer := bytes.HasPrefix(b[i:], closing)
		if depth == 0 && closer {
			return i, true
		}
		tr.visit(i, depth, closer)
		c := b[i]
		switch {
		case isQuote(c):
			j, ok := skipLiteral(b, i)
			if !ok {
				return 0, false
			}
			i = j
			continue
		case c == '/' && i+1 < len(b) && (b[i+1] == '/' || !openComment):
			if j, ok := skipHostComment(b, i); ok {
				i = j
				continue
			}
			openComment = b[i+1] == '*'
		case c == '{':
			depth++
		case c == '}':
			depth--
		}
		i++
	}
	return 0, false
}
