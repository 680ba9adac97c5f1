package lexer

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"

	"quill/internal/lang"
	"quill/internal/source"
	"quill/internal/token"
)

// Mode is the set of transient flags sensors toggle while tokenizing.
type Mode uint8

const (
	// ModeLangBlock is set while at least one language block is open.
	ModeLangBlock Mode = 1 << iota
	// ModeDirectiveComment is set between "<!-- @..." (or "<!-- }") and "-->".
	ModeDirectiveComment
)

// Context owns the tokenizer state shared by every sub-parser of one run:
// the remaining source, the cursor, the line counter and the mode flags.
// The cursor never moves backwards. A Context belongs to exactly one
// Tokenizer and must not be shared between goroutines.
type Context struct {
	file  *source.File
	src   []byte
	off   uint32
	limit uint32
	line  uint32

	mode     Mode
	langs    []*lang.Lang
	depth    int
	sensedAt int64 // offset of the last zero-width sensor, -1 if none
	lastEnd  uint32

	registry *lang.Registry
	syntax   Syntax

	// следы неудачных сканирований, см. memo.go
	traces       [scanKinds]*scanTrace
	noCommentEnd int64 // offset from which "*@" never occurs, -1 if unknown
}

// NewContext creates a context positioned at the start of file.
func NewContext(file *source.File, syntax Syntax, registry *lang.Registry) *Context {
	limit, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return &Context{
		file:         file,
		src:          file.Content,
		limit:        limit,
		line:         1,
		sensedAt:     -1,
		registry:     registry,
		noCommentEnd: -1,
		syntax:       syntax,
	}
}

// HasRemain reports whether unconsumed input is left.
func (c *Context) HasRemain() bool {
	return c.off < c.limit
}

// Remain returns the unconsumed input. The slice aliases the source and must
// not be modified.
func (c *Context) Remain() []byte {
	return c.src[c.off:c.limit]
}

// Offset returns the cursor position in bytes.
func (c *Context) Offset() uint32 { return c.off }

// Line returns the 1-based line of the cursor.
func (c *Context) Line() uint32 { return c.line }

// File returns the template being tokenized.
func (c *Context) File() *source.File { return c.file }

// Syntax returns the delimiters in effect.
func (c *Context) Syntax() Syntax { return c.syntax }

// Registry returns the read-only language registry.
func (c *Context) Registry() *lang.Registry { return c.registry }

// Advance moves the cursor forward by exactly n bytes. Zero is a no-op
// reserved for sensors. Advancing past the end is a programming error.
func (c *Context) Advance(n int) {
	if n == 0 {
		return
	}
	un, err := safecast.Conv[uint32](n)
	if err != nil || un > c.limit-c.off {
		panic(fmt.Errorf("lexer: advance %d past end (offset %d, limit %d)", n, c.off, c.limit))
	}
	lines := bytes.Count(c.src[c.off:c.off+un], []byte{'\n'})
	c.line += uint32(lines) //nolint:gosec // lines <= un
	c.off += un
}

// Mark это метка, что бы быстро получать Span читаемого фрагмента
type Mark struct {
	off  uint32
	line uint32
}

// Mark saves the cursor position and line.
func (c *Context) Mark() Mark {
	return Mark{off: c.off, line: c.line}
}

// SpanFrom returns the span between m and the cursor.
func (c *Context) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.file.ID, Start: m.off, End: c.off}
}

// TokenFrom builds a token covering the input consumed since m.
func (c *Context) TokenFrom(m Mark, kind token.Kind, payload string) token.Token {
	sp := c.SpanFrom(m)
	return token.Token{
		Kind:    kind,
		Span:    sp,
		Text:    string(c.src[sp.Start:sp.End]),
		Payload: payload,
		Line:    m.line,
	}
}

// Mode returns the current mode flags.
func (c *Context) Mode() Mode { return c.mode }

// InMode reports whether all flags in m are set.
func (c *Context) InMode(m Mode) bool { return c.mode&m == m }

// SetMode sets the flags in m.
func (c *Context) SetMode(m Mode) { c.mode |= m }

// ClearMode clears the flags in m.
func (c *Context) ClearMode(m Mode) { c.mode &^= m }

// PushLang enters a language block and sets ModeLangBlock.
func (c *Context) PushLang(l *lang.Lang) {
	c.langs = append(c.langs, l)
	c.mode |= ModeLangBlock
}

// PopLang leaves the innermost language block; ModeLangBlock is cleared when
// no block remains open.
func (c *Context) PopLang() *lang.Lang {
	if len(c.langs) == 0 {
		return nil
	}
	l := c.langs[len(c.langs)-1]
	c.langs = c.langs[:len(c.langs)-1]
	if len(c.langs) == 0 {
		c.mode &^= ModeLangBlock
	}
	return l
}

// Lang returns the innermost open language block, or nil.
func (c *Context) Lang() *lang.Lang {
	if len(c.langs) == 0 {
		return nil
	}
	return c.langs[len(c.langs)-1]
}

// BlockDepth returns how many directive blocks are open.
func (c *Context) BlockDepth() int { return c.depth }

// OpenBlock records a directive block opening.
func (c *Context) OpenBlock() { c.depth++ }

// CloseBlock records a block close; it reports false when no block was open.
func (c *Context) CloseBlock() bool {
	if c.depth == 0 {
		return false
	}
	c.depth--
	return true
}

// markSensed remembers that a zero-width sensor fired at the cursor so no
// zero-width sensor fires there again.
func (c *Context) markSensed() { c.sensedAt = int64(c.off) }

// sensedHere reports whether a zero-width sensor already fired at the cursor.
func (c *Context) sensedHere() bool { return c.sensedAt == int64(c.off) }

// LastEnd returns the offset at which the previous token ended.
func (c *Context) LastEnd() uint32 { return c.lastEnd }

// snapshot is the comparable part of the context used to verify that a
// declining sub-parser left no trace.
type snapshot struct {
	off, line uint32
	mode      Mode
	langs     int
	top       *lang.Lang
	depth     int
	sensedAt  int64
}

func (c *Context) snapshot() snapshot {
	return snapshot{
		off:      c.off,
		line:     c.line,
		mode:     c.mode,
		langs:    len(c.langs),
		top:      c.Lang(),
		depth:    c.depth,
		sensedAt: c.sensedAt,
	}
}
