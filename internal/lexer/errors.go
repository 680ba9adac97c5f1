package lexer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrChainExhausted means every sub-parser declined while input remained.
	// The fail-through guard makes this unreachable for chains built by
	// BuildChain, so seeing it points at a chain defect, not at the template.
	ErrChainExhausted = errors.New("lexer: chain exhausted")
	// ErrNoProgress is returned when a sub-parser reports a token that does
	// not advance the cursor and is not a zero-width sensor.
	ErrNoProgress = errors.New("lexer: no forward progress")
	// ErrImpureDecline is returned in strict mode when a sub-parser declined
	// but changed the context.
	ErrImpureDecline = errors.New("lexer: declining sub-parser changed the context")
)

// ExhaustedError carries the position at which the chain ran dry.
type ExhaustedError struct {
	Offset uint32
	Line   uint32
	Chain  []string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s at line %d (offset %d), chain [%s]",
		ErrChainExhausted, e.Line, e.Offset, strings.Join(e.Chain, ", "))
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrChainExhausted }
