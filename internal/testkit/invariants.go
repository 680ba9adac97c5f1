package testkit

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"quill/internal/source"
	"quill/internal/token"
)

// CheckTokenStream runs the stream invariants on a complete token sequence
// produced from sf, optionally ending with EOF:
// 1) every span belongs to sf and lies within its content
// 2) tokens partition the content: each starts where the previous ended and
// the last one ends at the end of the content
// 3) Text is exactly the source slice of Span
// 4) only zero-width sensors have empty spans, at most one per offset
func CheckTokenStream(sf *source.File, toks []token.Token) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	limit, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var at uint32
	zeroAt := int64(-1)
	for i, tok := range toks {
		sp := tok.Span
		if sp.File != sf.ID {
			return fmt.Errorf("token %d: span file mismatch: got=%d want=%d", i, sp.File, sf.ID)
		}
		if tok.Kind == token.EOF {
			if i != len(toks)-1 || sp.Start != at || !sp.Empty() {
				return fmt.Errorf("token %d: EOF must be last and empty at %d, got %v", i, at, sp)
			}
			continue
		}
		if sp.Start != at {
			return fmt.Errorf("token %d (%s): starts at %d, previous ended at %d", i, tok.Kind, sp.Start, at)
		}
		if sp.End < sp.Start || sp.End > limit {
			return fmt.Errorf("token %d (%s): bad span %v", i, tok.Kind, sp)
		}
		if tok.Text != string(sf.Content[sp.Start:sp.End]) {
			return fmt.Errorf("token %d (%s): text %q does not match source %q", i, tok.Kind, tok.Text, sf.Content[sp.Start:sp.End])
		}
		if sp.Empty() {
			if !tok.IsSensor() || !tok.Sense.ZeroWidth() {
				return fmt.Errorf("token %d (%s): empty span at %d", i, tok.Kind, sp.Start)
			}
			if zeroAt == int64(sp.Start) {
				return fmt.Errorf("token %d: second zero-width sensor at %d", i, sp.Start)
			}
			zeroAt = int64(sp.Start)
		}
		at = sp.End
	}
	if at != limit {
		return fmt.Errorf("stream ends at %d, content length %d", at, limit)
	}
	return nil
}

// Concat joins the Text of toks.
func Concat(toks []token.Token) string {
	var sb strings.Builder
	for _, tok := range toks {
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

// Kinds returns the kinds of toks, handy for table comparisons.
func Kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}
