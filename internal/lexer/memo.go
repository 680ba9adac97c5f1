package lexer

import (
	"bytes"
	"math"
)

// scanKind selects which remembered scan a lookup consults.
type scanKind uint8

const (
	scanParen scanKind = iota
	scanBracket
	scanScript
	scanKinds
)

const unvisited = math.MinInt

// scanTrace remembers a delimiter scan that ran out of input. A later scan
// that starts at a byte the failed one stepped on (outside literals and host
// comments) walks the same bytes with its depth shifted by a constant, so
// it succeeds only where a closer was seen at the matching depth.
type scanTrace struct {
	base    int         // absolute offset of b[0]
	start   int         // first visited index of b
	depth   []int       // depth before each index from start, or unvisited
	closers map[int]int // depth before a closer -> last index of such a closer
}

func newScanTrace(base, start, n int) *scanTrace {
	depth := make([]int, n-start)
	for i := range depth {
		depth[i] = unvisited
	}
	return &scanTrace{base: base, start: start, depth: depth, closers: make(map[int]int)}
}

func (t *scanTrace) visit(i, depth int, closer bool) {
	if t == nil {
		return
	}
	t.depth[i-t.start] = depth
	if closer {
		t.closers[depth] = i
	}
}

// depthAt returns the depth the failed scan had before absolute offset abs.
func (t *scanTrace) depthAt(abs int) (int, bool) {
	if t == nil {
		return 0, false
	}
	i := abs - t.base - t.start
	if i < 0 || i >= len(t.depth) || t.depth[i] == unvisited {
		return 0, false
	}
	return t.depth[i], true
}

// closerFrom reports whether a closer at depth was seen at or after abs.
func (t *scanTrace) closerFrom(abs, depth int) bool {
	i, ok := t.closers[depth]
	return ok && t.base+i >= abs
}

// balanced is walkBalanced on the remaining input, starting at b[i] == open.
// Scans that run out of input are remembered per kind.
func (c *Context) balanced(i int, open, closing byte) (int, bool) {
	kind := scanParen
	if open == '[' {
		kind = scanBracket
	}
	abs := int(c.off) + i
	if tr := c.traces[kind]; tr != nil {
		if d, ok := tr.depthAt(abs); ok && !tr.closerFrom(abs, d+1) {
			return 0, false
		}
	}
	b := c.Remain()
	end, ok := walkBalanced(b, i, open, closing, nil)
	if !ok {
		tr := newScanTrace(int(c.off), i, len(b))
		walkBalanced(b, i, open, closing, tr)
		c.traces[kind] = tr
	}
	return end, ok
}

// scriptBody is walkScriptBody on the remaining input.
func (c *Context) scriptBody(i int, closing []byte) (int, bool) {
	abs := int(c.off) + i
	if tr := c.traces[scanScript]; tr != nil {
		if d, ok := tr.depthAt(abs); ok && !tr.closerFrom(abs, d) {
			return 0, false
		}
	}
	b := c.Remain()
	end, ok := walkScriptBody(b, i, closing, nil)
	if !ok {
		tr := newScanTrace(int(c.off), i, len(b))
		walkScriptBody(b, i, closing, tr)
		c.traces[scanScript] = tr
	}
	return end, ok
}

// blockCommentEnd returns the index of "*<marker>" at or after i. Once the
// closer is known to be missing from some offset on, later calls answer at once.
func (c *Context) blockCommentEnd(i int) (int, bool) {
	abs := int64(c.off) + int64(i)
	if c.noCommentEnd >= 0 && abs >= c.noCommentEnd {
		return 0, false
	}
	b := c.Remain()
	j := bytes.Index(b[i:], []byte{'*', c.syntax.Marker})
	if j < 0 {
		c.noCommentEnd = abs
		return 0, false
	}
	return i + j, true
}
