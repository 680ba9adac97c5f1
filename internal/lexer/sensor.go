package lexer

import (
	"bytes"

	"quill/internal/lang"
	"quill/internal/token"
)

var (
	commentOpen  = []byte("<!--")
	commentClose = []byte("-->")
)

// langStartSensor notices the start of a registered language block (e.g.
// "<script>") outside any other block. It consumes nothing: the marker
// itself is ordinary template text, only the mode changes.
type langStartSensor struct{}

func (langStartSensor) Name() string { return StageLangStart.String() }

func (s langStartSensor) Attempt(ctx *Context) (Result, bool) {
	if ctx.InMode(ModeLangBlock) || ctx.sensedHere() {
		return Result{}, false
	}
	l := matchLangStart(ctx, ctx.Remain())
	if l == nil {
		return Result{}, false
	}
	m := ctx.Mark()
	ctx.PushLang(l)
	ctx.markSensed()
	tok := ctx.TokenFrom(m, token.Sensor, l.Name)
	tok.Sense = token.SenseLangStart
	return result(tok, token.FormatNone, s.Name())
}

// langEndSensor notices the end marker of the innermost open language block.
type langEndSensor struct{}

func (langEndSensor) Name() string { return StageLangEnd.String() }

func (s langEndSensor) Attempt(ctx *Context) (Result, bool) {
	l := ctx.Lang()
	if l == nil || ctx.sensedHere() {
		return Result{}, false
	}
	if _, ok := l.MatchEnd(ctx.Remain()); !ok {
		return Result{}, false
	}
	m := ctx.Mark()
	ctx.PopLang()
	ctx.markSensed()
	tok := ctx.TokenFrom(m, token.Sensor, l.Name)
	tok.Sense = token.SenseLangEnd
	return result(tok, token.FormatNone, s.Name())
}

// commentStartSensor recognizes "<!--" that wraps a directive or a block
// close, as in "<!-- @if (x) { -->" and "<!-- } -->", consuming the opener
// and the spaces after it.
type commentStartSensor struct{}

func (commentStartSensor) Name() string { return StageCommentStart.String() }

func (s commentStartSensor) Attempt(ctx *Context) (Result, bool) {
	if ctx.InMode(ModeDirectiveComment) {
		return Result{}, false
	}
	n, ok := matchCommentStart(ctx.Remain(), ctx.Syntax())
	if !ok {
		return Result{}, false
	}
	m := ctx.Mark()
	ctx.Advance(n)
	ctx.SetMode(ModeDirectiveComment)
	tok := ctx.TokenFrom(m, token.Sensor, "")
	tok.Sense = token.SenseCommentStart
	return result(tok, token.FormatNone, s.Name())
}

// commentEndSensor recognizes the "-->" (with leading spaces) that closes a
// directive comment.
type commentEndSensor struct{}

func (commentEndSensor) Name() string { return StageCommentEnd.String() }

func (s commentEndSensor) Attempt(ctx *Context) (Result, bool) {
	if !ctx.InMode(ModeDirectiveComment) {
		return Result{}, false
	}
	n, ok := matchCommentEnd(ctx.Remain())
	if !ok {
		return Result{}, false
	}
	m := ctx.Mark()
	ctx.Advance(n)
	ctx.ClearMode(ModeDirectiveComment)
	tok := ctx.TokenFrom(m, token.Sensor, "")
	tok.Sense = token.SenseCommentEnd
	return result(tok, token.FormatNone, s.Name())
}

// matchLangStart returns the first registered language whose block starts at
// the head of b.
func matchLangStart(ctx *Context, b []byte) *lang.Lang {
	if len(b) == 0 || b[0] != '<' {
		return nil
	}
	for _, l := range ctx.Registry().Langs() {
		if _, ok := l.MatchStart(b); ok {
			return l
		}
	}
	return nil
}

// matchCommentStart: "<!--" [ \t]* (marker | block close), returning the
// length up to the marker. The block close form ends a natural-template
// block: "<!-- } -->".
func matchCommentStart(b []byte, syn Syntax) (int, bool) {
	if !bytes.HasPrefix(b, commentOpen) {
		return 0, false
	}
	i := skipSpaces(b, len(commentOpen))
	if i >= len(b) || (b[i] != syn.Marker && !bytes.HasPrefix(b[i:], []byte(syn.BlockClose))) {
		return 0, false
	}
	return i, true
}

// matchCommentEnd: [ \t]* "-->".
func matchCommentEnd(b []byte) (int, bool) {
	i := skipSpaces(b, 0)
	if !bytes.HasPrefix(b[i:], commentClose) {
		return 0, false
	}
	return i + len(commentClose), true
}
