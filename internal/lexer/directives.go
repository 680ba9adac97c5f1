package lexer

import (
	"bytes"
	"slices"

	"quill/internal/token"
)

// reserved words never start an expression.
var reserved = []string{"if", "else", "for", "while", "args", "import"}

// escapeDirective: "@@" stands for a literal marker.
type escapeDirective struct{}

func (escapeDirective) Name() string         { return "escape" }
func (escapeDirective) Format() token.Format { return token.FormatNone }

func (escapeDirective) Match(ctx *Context) (token.Token, bool) {
	mk := ctx.Syntax().Marker
	b := ctx.Remain()
	if len(b) < 2 || b[1] != mk {
		return token.Token{}, false
	}
	m := ctx.Mark()
	ctx.Advance(2)
	return ctx.TokenFrom(m, token.Escape, string(mk)), true
}

// lineCommentDirective: "@// ..." up to, not including, the line break.
type lineCommentDirective struct{}

func (lineCommentDirective) Name() string         { return "line-comment" }
func (lineCommentDirective) Format() token.Format { return token.FormatTrimLineBreakAndSpaces }

func (lineCommentDirective) Match(ctx *Context) (token.Token, bool) {
	b := ctx.Remain()
	if !bytes.HasPrefix(b[1:], []byte("//")) {
		return token.Token{}, false
	}
	end := lineEnd(b, 3)
	if end > 3 && b[end-1] == '\r' {
		end--
	}
	m := ctx.Mark()
	ctx.Advance(end)
	return ctx.TokenFrom(m, token.Comment, ""), true
}

// blockCommentDirective: "@* ... *@". Unterminated comments are declined.
type blockCommentDirective struct{}

func (blockCommentDirective) Name() string         { return "block-comment" }
func (blockCommentDirective) Format() token.Format { return token.FormatNone }

func (blockCommentDirective) Match(ctx *Context) (token.Token, bool) {
	b := ctx.Remain()
	if b[1] != '*' {
		return token.Token{}, false
	}
	j, ok := ctx.blockCommentEnd(2)
	if !ok {
		return token.Token{}, false
	}
	m := ctx.Mark()
	ctx.Advance(j + 2)
	return ctx.TokenFrom(m, token.Comment, ""), true
}

// elseDirective: "@else {" or "@else if (cond) {".
type elseDirective struct{}

func (elseDirective) Name() string         { return "else" }
func (elseDirective) Format() token.Format { return token.FormatTrimSpacesIfLineBreak }

func (elseDirective) Match(ctx *Context) (token.Token, bool) {
	b := ctx.Remain()
	if !keywordAt(b, 1, "else") {
		return token.Token{}, false
	}
	open := []byte(ctx.Syntax().BlockOpen)
	payload := "else"
	i := skipWS(b, 1+len("else"))
	if keywordAt(b, i, "if") {
		end, ok := condition(ctx, b, i+len("if"))
		if !ok {
			return token.Token{}, false
		}
		i = end
		payload = "else if"
	}
	if !bytes.HasPrefix(b[i:], open) {
		return token.Token{}, false
	}
	m := ctx.Mark()
	ctx.Advance(i + len(open))
	ctx.OpenBlock()
	return ctx.TokenFrom(m, token.BlockOpen, payload), true
}

// blockDirective: "@kw (cond) {" for each keyword.
type blockDirective struct {
	keywords []string
}

func (blockDirective) Name() string         { return "block" }
func (blockDirective) Format() token.Format { return token.FormatTrimSpacesIfLineBreak }

func (d blockDirective) Match(ctx *Context) (token.Token, bool) {
	b := ctx.Remain()
	kw := matchKeyword(b, 1, d.keywords)
	if kw == "" {
		return token.Token{}, false
	}
	i, ok := condition(ctx, b, 1+len(kw))
	if !ok {
		return token.Token{}, false
	}
	open := []byte(ctx.Syntax().BlockOpen)
	if !bytes.HasPrefix(b[i:], open) {
		return token.Token{}, false
	}
	m := ctx.Mark()
	ctx.Advance(i + len(open))
	ctx.OpenBlock()
	return ctx.TokenFrom(m, token.BlockOpen, kw), true
}

// lineDirective: "@kw arguments" up to the end of the line.
type lineDirective struct {
	keywords []string
}

func (lineDirective) Name() string         { return "line" }
func (lineDirective) Format() token.Format { return token.FormatTrimLineBreakAndSpaces }

func (d lineDirective) Match(ctx *Context) (token.Token, bool) {
	b := ctx.Remain()
	kw := matchKeyword(b, 1, d.keywords)
	if kw == "" {
		return token.Token{}, false
	}
	i := 1 + len(kw)
	if i >= len(b) || !isSpace(b[i]) {
		return token.Token{}, false
	}
	end := lineEnd(b, i)
	if b[end-1] == '\r' {
		end--
	}
	m := ctx.Mark()
	ctx.Advance(end)
	return ctx.TokenFrom(m, token.Directive, kw), true
}

// expressionDirective: "@(expr)" or "@name.path(args)[idx]".
type expressionDirective struct{}

func (expressionDirective) Name() string         { return "expression" }
func (expressionDirective) Format() token.Format { return token.FormatNone }

func (expressionDirective) Match(ctx *Context) (token.Token, bool) {
	b := ctx.Remain()
	var n int
	if b[1] == '(' {
		end, ok := ctx.balanced(1, '(', ')')
		if !ok {
			return token.Token{}, false
		}
		n = end
	} else {
		l := identLen(b[1:])
		if l == 0 || slices.Contains(reserved, string(b[1:1+l])) {
			return token.Token{}, false
		}
		n = exprTail(ctx, b, 1+l)
	}
	m := ctx.Mark()
	ctx.Advance(n)
	return ctx.TokenFrom(m, token.Directive, "expr"), true
}

// exprTail extends an expression over ".ident", "(args)" and "[index]"
// suffixes. A dangling '.' is left to the text that follows.
func exprTail(ctx *Context, b []byte, i int) int {
	for i < len(b) {
		switch b[i] {
		case '.':
			l := identLen(b[i+1:])
			if l == 0 {
				return i
			}
			i += 1 + l
		case '(':
			end, ok := ctx.balanced(i, '(', ')')
			if !ok {
				return i
			}
			i = end
		case '[':
			end, ok := ctx.balanced(i, '[', ']')
			if !ok {
				return i
			}
			i = end
		default:
			return i
		}
	}
	return i
}

// keywordAt reports whether kw sits at b[i] as a whole word.
func keywordAt(b []byte, i int, kw string) bool {
	if !bytes.HasPrefix(b[i:], []byte(kw)) {
		return false
	}
	j := i + len(kw)
	return j >= len(b) || !isIdentContinueByte(b[j])
}

func matchKeyword(b []byte, i int, keywords []string) string {
	for _, kw := range keywords {
		if keywordAt(b, i, kw) {
			return kw
		}
	}
	return ""
}

// condition scans optional whitespace, a parenthesized condition and the
// whitespace after it, returning the index of what follows.
func condition(ctx *Context, b []byte, i int) (int, bool) {
	i = skipSpaces(b, i)
	if i >= len(b) || b[i] != '(' {
		return 0, false
	}
	end, ok := ctx.balanced(i, '(', ')')
	if !ok {
		return 0, false
	}
	return skipWS(b, end), true
}
