package lexer

import (
	"errors"
	"slices"
	"testing"

	"quill/internal/source"
	"quill/internal/token"
)

func TestPlan(t *testing.T) {
	core := []Stage{StageDispatcher, StageBlockClose, StageScript, StageStringRun, StageGuard}
	withLang := append([]Stage{StageLangStart, StageLangEnd}, core...)
	withAll := append([]Stage{StageLangStart, StageLangEnd, StageCommentStart, StageCommentEnd}, core...)

	tests := []struct {
		name string
		f    Features
		want []Stage
	}{
		{"nothing", Features{}, core},
		{"langs only", Features{HasTemplateLangs: true}, core},
		{"smart escape without langs", Features{SmartEscape: true}, core},
		{"natural without langs", Features{NaturalTemplate: true}, core},
		{"smart escape", Features{SmartEscape: true, HasTemplateLangs: true}, withLang},
		{"natural", Features{NaturalTemplate: true, HasTemplateLangs: true}, withAll},
		{"both", Features{SmartEscape: true, NaturalTemplate: true, HasTemplateLangs: true}, withAll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.f)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Plan(%+v) = %v, want %v", tt.f, got, tt.want)
			}
			if !slices.Equal(Plan(tt.f), got) {
				t.Fatalf("Plan is not deterministic")
			}
		})
	}
}

func TestBuildChainRequiresGuardLast(t *testing.T) {
	bad := [][]Stage{
		nil,
		{StageDispatcher, StageStringRun},
		{StageGuard, StageStringRun},
		{StageGuard, StageGuard},
	}
	for _, plan := range bad {
		if _, err := BuildChain(plan, ChainEnv{}); err == nil {
			t.Errorf("BuildChain(%v) accepted a plan without a trailing guard", plan)
		}
	}
	chain, err := BuildChain(Plan(Features{}), ChainEnv{})
	if err != nil {
		t.Fatalf("BuildChain: %v", err)
	}
	if got := chain[len(chain)-1].Name(); got != "fail-through" {
		t.Fatalf("last parser = %s", got)
	}
}

func newFile(t *testing.T, src string) *source.File {
	t.Helper()
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("test.html", []byte(src)))
}

func TestChainExhaustedIsDistinctFromEOF(t *testing.T) {
	file := newFile(t, "x@")
	tz := newWithChain(file, DefaultSyntax(), nil, []SubParser{stringRunParser{}})

	res, err := tz.Next()
	if err != nil || res.Token.Text != "x" {
		t.Fatalf("first = %+v, %v", res, err)
	}
	_, err = tz.Next()
	if !errors.Is(err, ErrChainExhausted) {
		t.Fatalf("want ErrChainExhausted, got %v", err)
	}
	var ex *ExhaustedError
	if !errors.As(err, &ex) || ex.Offset != 1 || ex.Line != 1 {
		t.Fatalf("exhausted error = %#v", err)
	}
	if tz.State() != StateFailed || tz.HasNext() {
		t.Fatalf("state after exhaustion = %s", tz.State())
	}
	if _, again := tz.Next(); !errors.Is(again, ErrChainExhausted) {
		t.Fatalf("failed tokenizer must keep its error, got %v", again)
	}
}

type zeroWidthParser struct{}

func (zeroWidthParser) Name() string { return "zero" }
func (zeroWidthParser) Attempt(ctx *Context) (Result, bool) {
	return result(ctx.TokenFrom(ctx.Mark(), token.Text, ""), token.FormatNone, "zero")
}

type sloppyParser struct{}

func (sloppyParser) Name() string { return "sloppy" }
func (sloppyParser) Attempt(ctx *Context) (Result, bool) {
	ctx.SetMode(ModeDirectiveComment)
	return Result{}, false
}

func TestNoProgressDetected(t *testing.T) {
	tz := newWithChain(newFile(t, "abc"), DefaultSyntax(), nil, []SubParser{zeroWidthParser{}})
	if _, err := tz.Next(); !errors.Is(err, ErrNoProgress) {
		t.Fatalf("want ErrNoProgress, got %v", err)
	}
}

func TestAllStopsAfterDefect(t *testing.T) {
	tz := newWithChain(newFile(t, "abc"), DefaultSyntax(), nil, []SubParser{zeroWidthParser{}})
	yields := 0
	for _, err := range tz.All() {
		yields++
		if !errors.Is(err, ErrNoProgress) {
			t.Fatalf("want ErrNoProgress, got %v", err)
		}
	}
	if yields != 1 {
		t.Fatalf("All yielded %d times, want 1", yields)
	}
	if !tz.ctx.HasRemain() || tz.HasNext() {
		t.Fatalf("HasNext = %v with input left after a defect", tz.HasNext())
	}
}

func TestStrictCatchesImpureDecline(t *testing.T) {
	tz := newWithChain(newFile(t, "abc"), DefaultSyntax(), nil,
		[]SubParser{sloppyParser{}, stringRunParser{}, failThroughGuard{}})
	tz.strict = true
	if _, err := tz.Next(); !errors.Is(err, ErrImpureDecline) {
		t.Fatalf("want ErrImpureDecline, got %v", err)
	}
}

func TestContextAdvance(t *testing.T) {
	ctx := NewContext(newFile(t, "a\nb\n\nc"), DefaultSyntax(), nil)
	ctx.Advance(0)
	if ctx.Offset() != 0 || ctx.Line() != 1 {
		t.Fatalf("zero advance moved the cursor")
	}
	ctx.Advance(2)
	if ctx.Line() != 2 || string(ctx.Remain()) != "b\n\nc" {
		t.Fatalf("line=%d remain=%q", ctx.Line(), ctx.Remain())
	}
	ctx.Advance(3)
	if ctx.Line() != 4 {
		t.Fatalf("line=%d, want 4", ctx.Line())
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("advance past end must panic")
		}
	}()
	ctx.Advance(2)
}

func TestDeclineLeavesContextUntouched(t *testing.T) {
	inputs := []string{"@", "@if (x", "@{ unterminated", "@* open", "@else", "@args", "<!-- no marker", "plain"}
	parsers := append(mustChain(t, Features{NaturalTemplate: true, HasTemplateLangs: true}), NewDispatcher())
	for _, in := range inputs {
		for _, p := range parsers {
			ctx := NewContext(newFile(t, in), DefaultSyntax(), nil)
			before := ctx.snapshot()
			if _, ok := p.Attempt(ctx); !ok && ctx.snapshot() != before {
				t.Errorf("%s declined %q but changed the context", p.Name(), in)
			}
		}
	}
}

func mustChain(t *testing.T, f Features) []SubParser {
	t.Helper()
	chain, err := BuildChain(Plan(f), ChainEnv{})
	if err != nil {
		t.Fatal(err)
	}
	return chain
}
