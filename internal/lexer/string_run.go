package lexer

import (
	"bytes"

	"quill/internal/token"
)

// stopSet says which sensor markers end a literal run.
type stopSet struct {
	langs    bool
	comments bool
}

// stringRunParser consumes the longest run of literal text that cannot start
// a higher-priority token. It declines rather than emit an empty run.
type stringRunParser struct {
	stops stopSet
}

func (stringRunParser) Name() string { return StageStringRun.String() }

func (p stringRunParser) Attempt(ctx *Context) (Result, bool) {
	b := ctx.Remain()
	n := p.runLen(ctx, b)
	if n == 0 {
		return Result{}, false
	}
	m := ctx.Mark()
	ctx.Advance(n)
	return result(ctx.TokenFrom(m, token.Text, ""), token.FormatNone, p.Name())
}

func (p stringRunParser) runLen(ctx *Context, b []byte) int {
	syn := ctx.Syntax()
	closing := []byte(syn.BlockClose)
	inComment := p.stops.comments && ctx.InMode(ModeDirectiveComment)
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == syn.Marker:
			return i
		case c == closing[0] && bytes.HasPrefix(b[i:], closing):
			return i
		case c == '<' && p.sensorAt(ctx, b[i:], i == 0):
			return i
		case inComment && isSpace(c):
			// пробелы перед "-->" принадлежат сенсору
			j := skipSpaces(b, i)
			if bytes.HasPrefix(b[j:], commentClose) {
				return i
			}
			i = j - 1
		case inComment && c == '-' && bytes.HasPrefix(b[i:], commentClose):
			return i
		}
	}
	return len(b)
}

// sensorAt reports whether a sensor would fire on b. At the cursor itself a
// zero-width sensor that already fired is ignored, otherwise the run could
// never get past its marker.
func (p stringRunParser) sensorAt(ctx *Context, b []byte, atCursor bool) bool {
	if p.stops.langs && !(atCursor && ctx.sensedHere()) {
		if l := ctx.Lang(); l != nil {
			if _, ok := l.MatchEnd(b); ok {
				return true
			}
		} else if matchLangStart(ctx, b) != nil {
			return true
		}
	}
	if p.stops.comments && !ctx.InMode(ModeDirectiveComment) {
		if _, ok := matchCommentStart(b, ctx.Syntax()); ok {
			return true
		}
	}
	return false
}
