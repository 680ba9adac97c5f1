package lexer

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"quill/internal/diag"
	"quill/internal/token"
	"quill/internal/trace"
)

// failThroughGuard is the last link of every chain. When nothing before it
// moved the cursor past the previous token it consumes one character as
// literal text, so every call to Next makes progress on any input.
type failThroughGuard struct {
	reporter diag.Reporter
	tracer   trace.Tracer
}

func (failThroughGuard) Name() string { return StageGuard.String() }

func (g failThroughGuard) Attempt(ctx *Context) (Result, bool) {
	if ctx.Offset() > ctx.LastEnd() || !ctx.HasRemain() {
		return Result{}, false
	}
	// одна руна, а не байт: не режем UTF-8 последовательности
	_, n := utf8.DecodeRune(ctx.Remain())
	m := ctx.Mark()
	ctx.Advance(n)
	tok := ctx.TokenFrom(m, token.Text, "")

	if g.reporter != nil {
		code, msg := explainFallThrough(ctx, tok.Text)
		diag.ReportWarning(g.reporter, code, tok.Span, msg).Emit()
	}
	trace.Point(g.tracer, trace.ScopeToken, "fail-through", fmt.Sprintf("line %d offset %d", tok.Line, tok.Span.Start))
	return result(tok, token.FormatNone, g.Name())
}

// explainFallThrough names the most likely reason the chain fell through to the guard.
func explainFallThrough(ctx *Context, text string) (diag.Code, string) {
	syn := ctx.Syntax()
	if text == string(syn.Marker) {
		rest := ctx.Remain()
		switch {
		case bytes.HasPrefix(rest, []byte{'*'}):
			return diag.LexUnterminatedComment, fmt.Sprintf("comment %q is never closed with \"*%c\"", string(syn.Marker)+"*", syn.Marker)
		case bytes.HasPrefix(rest, []byte(syn.BlockOpen)):
			return diag.LexUnterminatedScript, fmt.Sprintf("script block is never closed with %q", syn.BlockClose)
		}
	}
	return diag.LexUnrecognizedInput, fmt.Sprintf("unrecognized input %q treated as text", text)
}
