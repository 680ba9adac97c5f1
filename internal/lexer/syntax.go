package lexer

import (
	"errors"
	"fmt"
	"strings"
)

// Syntax holds the delimiters of the template grammar.
type Syntax struct {
	Marker     byte   // directive marker, '@' by default
	BlockOpen  string // opens a directive body, "{" by default
	BlockClose string // closes a directive body, "}" by default
}

// DefaultSyntax returns the Rythm-style delimiters.
func DefaultSyntax() Syntax {
	return Syntax{Marker: '@', BlockOpen: "{", BlockClose: "}"}
}

var errBadSyntax = errors.New("invalid template syntax")

// Validate checks that the delimiters do not collide with each other or with
// the markers sensors look for.
func (s Syntax) Validate() error {
	switch {
	case s.Marker == 0 || s.Marker >= 0x80:
		return fmt.Errorf("%w: marker must be a single ASCII byte", errBadSyntax)
	case isSpace(s.Marker) || isNewline(s.Marker) || s.Marker == '<' || isIdentContinueByte(s.Marker):
		return fmt.Errorf("%w: marker %q is reserved", errBadSyntax, s.Marker)
	case s.BlockOpen == "" || s.BlockClose == "":
		return fmt.Errorf("%w: block delimiters must not be empty", errBadSyntax)
	case strings.IndexByte(s.BlockClose, s.Marker) == 0:
		return fmt.Errorf("%w: block close %q starts with the marker", errBadSyntax, s.BlockClose)
	case s.BlockClose[0] == '<':
		return fmt.Errorf("%w: block close must not start with '<'", errBadSyntax)
	case strings.ContainsAny(s.BlockOpen+s.BlockClose, " \t\r\n"):
		return fmt.Errorf("%w: block delimiters must not contain whitespace", errBadSyntax)
	}
	return nil
}

// withDefaults fills zero fields from DefaultSyntax.
func (s Syntax) withDefaults() Syntax {
	d := DefaultSyntax()
	if s.Marker == 0 {
		s.Marker = d.Marker
	}
	if s.BlockOpen == "" {
		s.BlockOpen = d.BlockOpen
	}
	if s.BlockClose == "" {
		s.BlockClose = d.BlockClose
	}
	return s
}
