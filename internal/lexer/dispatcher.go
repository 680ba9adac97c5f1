package lexer

import (
	"quill/internal/token"
)

// DirectiveParser is a member of the dispatcher family. Each one recognizes
// input beginning with the directive marker. Its formatting hint is a
// property of the parser itself, not of the token it produced.
type DirectiveParser interface {
	Name() string
	Format() token.Format
	Match(ctx *Context) (token.Token, bool)
}

// Dispatcher fans out to an ordered family of directive parsers.
type Dispatcher struct {
	family []DirectiveParser
}

// NewDispatcher returns a dispatcher with the default family, in priority
// order.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{family: []DirectiveParser{
		escapeDirective{},
		lineCommentDirective{},
		blockCommentDirective{},
		elseDirective{},
		blockDirective{keywords: []string{"if", "for", "while"}},
		lineDirective{keywords: []string{"args", "import"}},
		expressionDirective{},
	}}
}

// NewDispatcherWith returns a dispatcher over a custom family.
func NewDispatcherWith(family ...DirectiveParser) *Dispatcher {
	return &Dispatcher{family: family}
}

// Family returns the parsers in the order they are tried.
func (d *Dispatcher) Family() []DirectiveParser {
	out := make([]DirectiveParser, len(d.family))
	copy(out, d.family)
	return out
}

func (*Dispatcher) Name() string { return StageDispatcher.String() }

// Dispatch tries the family in order and returns the parser that matched
// together with its result.
func (d *Dispatcher) Dispatch(ctx *Context) (DirectiveParser, Result, bool) {
	b := ctx.Remain()
	if len(b) < 2 || b[0] != ctx.Syntax().Marker {
		return nil, Result{}, false
	}
	for _, p := range d.family {
		if tok, ok := p.Match(ctx); ok {
			return p, Result{Token: tok, Format: p.Format(), Parser: p.Name()}, true
		}
	}
	return nil, Result{}, false
}

func (d *Dispatcher) Attempt(ctx *Context) (Result, bool) {
	_, res, ok := d.Dispatch(ctx)
	return res, ok
}
