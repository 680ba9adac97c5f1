package lexer

import (
	"fmt"
	"iter"

	"quill/internal/diag"
	"quill/internal/lang"
	"quill/internal/source"
	"quill/internal/token"
	"quill/internal/trace"
)

// State is the position of a Tokenizer in its life cycle.
type State uint8

const (
	StateReady     State = iota // constructed, nothing pulled yet
	StateIterating              // at least one token pulled, input remains
	StateDone                   // input exhausted
	StateFailed                 // a chain defect was detected, see Next
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateIterating:
		return "iterating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Options configure one tokenization run. They are read once by New.
type Options struct {
	// Features select the sensors. HasTemplateLangs is always taken from
	// Registry.
	Features Features
	Syntax   Syntax
	Registry *lang.Registry
	Reporter diag.Reporter // optional
	Tracer   trace.Tracer  // optional
	// Strict checks every declining sub-parser for leftover context changes.
	Strict bool
}

// Leftover describes constructs still open when input ran out.
type Leftover struct {
	OpenBlocks int
	OpenLangs  []string
	InComment  bool
}

// Empty reports whether nothing was left open.
func (l Leftover) Empty() bool {
	return l.OpenBlocks == 0 && len(l.OpenLangs) == 0 && !l.InComment
}

// Tokenizer pulls tokens out of one template. It is single-use and must not
// be shared between goroutines.
type Tokenizer struct {
	ctx      *Context
	chain    []SubParser
	features Features
	reporter diag.Reporter
	strict   bool

	state      State
	err        error
	zeroAt     int64 // offset of the last zero-width token, -1 if none
	emitted    int
	guardFires int
}

// New builds the chain for opts and returns a tokenizer positioned at the
// start of file.
func New(file *source.File, opts Options) (*Tokenizer, error) {
	syn := opts.Syntax.withDefaults()
	if err := syn.Validate(); err != nil {
		return nil, err
	}
	f := opts.Features
	f.HasTemplateLangs = opts.Registry.HasTemplateLangs()
	chain, err := BuildChain(Plan(f), ChainEnv{
		Registry: opts.Registry,
		Reporter: opts.Reporter,
		Tracer:   opts.Tracer,
	})
	if err != nil {
		return nil, err
	}
	t := newWithChain(file, syn, opts.Registry, chain)
	t.features = f
	t.reporter = opts.Reporter
	t.strict = opts.Strict
	return t, nil
}

func newWithChain(file *source.File, syn Syntax, reg *lang.Registry, chain []SubParser) *Tokenizer {
	return &Tokenizer{
		ctx:    NewContext(file, syn, reg),
		chain:  chain,
		zeroAt: -1,
	}
}

// HasNext reports whether Next would produce a token other than EOF. After a
// chain defect it is false even though input remains, so All stops; Next
// keeps returning the error.
func (t *Tokenizer) HasNext() bool {
	return t.state != StateFailed && t.ctx.HasRemain()
}

// State returns the current life-cycle state.
func (t *Tokenizer) State() State { return t.state }

// Features returns the features the chain was planned from.
func (t *Tokenizer) Features() Features { return t.features }

// Chain returns the names of the sub-parsers in priority order.
func (t *Tokenizer) Chain() []string {
	names := make([]string, len(t.chain))
	for i, p := range t.chain {
		names[i] = p.Name()
	}
	return names
}

// Emitted returns the number of tokens produced so far, EOF excluded.
func (t *Tokenizer) Emitted() int { return t.emitted }

// GuardFires returns how often the fail-through guard produced a token.
func (t *Tokenizer) GuardFires() int { return t.guardFires }

// Line returns the line of the cursor.
func (t *Tokenizer) Line() uint32 { return t.ctx.Line() }

// Next returns the next token with its formatting hint. Once input is
// exhausted it keeps returning an EOF token and a nil error. A non-nil error
// is always a chain defect; the tokenizer stays failed afterwards.
func (t *Tokenizer) Next() (Result, error) {
	if t.state == StateFailed {
		return Result{}, t.err
	}
	ctx := t.ctx
	if !ctx.HasRemain() {
		t.state = StateDone
		return t.eof(), nil
	}
	t.state = StateIterating

	depth := ctx.BlockDepth()
	for _, p := range t.chain {
		var before snapshot
		if t.strict {
			before = ctx.snapshot()
		}
		res, ok := p.Attempt(ctx)
		if !ok {
			if t.strict && ctx.snapshot() != before {
				return t.fail(fmt.Errorf("%w: %s at offset %d", ErrImpureDecline, p.Name(), before.off))
			}
			continue
		}
		if err := t.checkProgress(p, res.Token); err != nil {
			return t.fail(err)
		}
		ctx.lastEnd = ctx.off
		t.emitted++
		if p.Name() == StageGuard.String() {
			t.guardFires++
		}
		if res.Token.Kind == token.BlockClose && depth == 0 && t.reporter != nil {
			diag.ReportWarning(t.reporter, diag.LexUnbalancedBlockClose, res.Token.Span,
				fmt.Sprintf("%q closes no open block", res.Token.Text)).Emit()
		}
		if !ctx.HasRemain() {
			t.state = StateDone
		}
		return res, nil
	}
	return t.fail(&ExhaustedError{Offset: ctx.Offset(), Line: ctx.Line(), Chain: t.Chain()})
}

// checkProgress enforces the partition of the source: each token starts
// where the previous one ended and ends at the cursor. Only sensors of a
// zero-width kind may emit empty spans, and never twice at one offset.
func (t *Tokenizer) checkProgress(p SubParser, tok token.Token) error {
	ctx := t.ctx
	if tok.Span.Start != ctx.lastEnd || tok.Span.End != ctx.off {
		return fmt.Errorf("%w: %s produced span %d..%d, expected start %d and end %d",
			ErrNoProgress, p.Name(), tok.Span.Start, tok.Span.End, ctx.lastEnd, ctx.off)
	}
	if !tok.ZeroWidth() {
		return nil
	}
	if !tok.IsSensor() || !tok.Sense.ZeroWidth() {
		return fmt.Errorf("%w: %s emitted an empty %s token at offset %d", ErrNoProgress, p.Name(), tok.Kind, ctx.off)
	}
	if t.zeroAt == int64(ctx.off) {
		return fmt.Errorf("%w: second zero-width token at offset %d", ErrNoProgress, ctx.off)
	}
	t.zeroAt = int64(ctx.off)
	return nil
}

func (t *Tokenizer) fail(err error) (Result, error) {
	t.state = StateFailed
	t.err = err
	return Result{}, err
}

func (t *Tokenizer) eof() Result {
	off := t.ctx.Offset()
	return Result{Token: token.Token{
		Kind: token.EOF,
		Span: source.Span{File: t.ctx.File().ID, Start: off, End: off},
		Line: t.ctx.Line(),
	}}
}

// All yields every token up to, not including, EOF. Iteration stops after
// the first error.
func (t *Tokenizer) All() iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		for t.HasNext() {
			res, err := t.Next()
			if !yield(res, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains the tokenizer.
func (t *Tokenizer) Collect() ([]Result, error) {
	var out []Result
	for res, err := range t.All() {
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// Leftover reports what was still open at the cursor. It is meaningful once
// the tokenizer is done.
func (t *Tokenizer) Leftover() Leftover {
	lo := Leftover{
		OpenBlocks: t.ctx.BlockDepth(),
		InComment:  t.ctx.InMode(ModeDirectiveComment),
	}
	for _, l := range t.ctx.langs {
		lo.OpenLangs = append(lo.OpenLangs, l.Name)
	}
	return lo
}
