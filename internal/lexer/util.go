package lexer

import (
	"bytes"
	"unicode"
	"unicode/utf8"
)

// ===== Классификаторы =====

func isSpace(b byte) bool   { return b == ' ' || b == '\t' }
func isNewline(b byte) bool { return b == '\n' || b == '\r' }
func isWS(b byte) bool      { return isSpace(b) || isNewline(b) }

func isIdentStartByte(b byte) bool {
	return b == '_' || b == '$' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || (b >= '0' && b <= '9')
}

// identLen returns the byte length of the identifier at the head of b,
// accepting Unicode letters after the ASCII fast path.
func identLen(b []byte) int {
	i := 0
	for i < len(b) {
		c := b[i]
		if c < utf8.RuneSelf {
			if (i == 0 && !isIdentStartByte(c)) || (i > 0 && !isIdentContinueByte(c)) {
				break
			}
			i++
			continue
		}
		r, sz := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError || !(unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))) {
			break
		}
		i += sz
	}
	return i
}

// skipSpaces returns the index of the first non-space/tab byte at or after i.
func skipSpaces(b []byte, i int) int {
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	return i
}

// skipWS is skipSpaces that also crosses line breaks.
func skipWS(b []byte, i int) int {
	for i < len(b) && isWS(b[i]) {
		i++
	}
	return i
}

// lineEnd returns the index of the next '\n' at or after i, or len(b).
func lineEnd(b []byte, i int) int {
	if j := bytes.IndexByte(b[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(b)
}

// skipLiteral skips a host-language string ("..."), char ('...') or raw
// (`...`) literal starting at b[i]. Backslash escapes are honoured in the
// first two forms; quoted literals end at a line break.
func skipLiteral(b []byte, i int) (int, bool) {
	quote := b[i]
	j := i + 1
	for j < len(b) {
		c := b[j]
		switch {
		case c == quote:
			return j + 1, true
		case c == '\\' && quote != '`':
			j += 2
			continue
		case c == '\n' && quote != '`':
			return 0, false
		}
		j++
	}
	return 0, false
}

// skipHostComment skips "// ..." or "/* ... */" at b[i]. An unterminated
// "/*" leaves the slash to the caller.
func skipHostComment(b []byte, i int) (int, bool) {
	if i+1 >= len(b) || b[i] != '/' {
		return 0, false
	}
	switch b[i+1] {
	case '/':
		return lineEnd(b, i), true
	case '*':
		if j := bytes.Index(b[i+2:], []byte("*/")); j >= 0 {
			return i + 2 + j + 2, true
		}
	}
	return 0, false
}

func isQuote(c byte) bool { return c == '"' || c == '\'' || c == '`' }

// walkBalanced scans from b[i] == open to the matching close, skipping
// literals. It returns the index just past the closing byte. tr, when set,
// records every step.
func walkBalanced(b []byte, i int, open, closing byte, tr *scanTrace) (int, bool) {
	depth := 0
	for i < len(b) {
		c := b[i]
		tr.visit(i, depth, c == closing)
		switch {
		case isQuote(c):
			j, ok := skipLiteral(b, i)
			if !ok {
				return 0, false
			}
			i = j
			continue
		case c == open:
			depth++
		case c == closing:
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
		i++
	}
	return 0, false
}
