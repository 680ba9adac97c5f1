package lexer_test

import (
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"quill/internal/diag"
	"quill/internal/lang"
	"quill/internal/lexer"
	"quill/internal/source"
	"quill/internal/testkit"
	"quill/internal/token"
)

// testReporter собирает все диагностики, полученные от токенизатора
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes,
	})
}

func (r *testReporter) codes() []diag.Code {
	out := make([]diag.Code, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		out = append(out, d.Code)
	}
	return out
}

type run struct {
	file     *source.File
	results  []lexer.Result
	tz       *lexer.Tokenizer
	reporter *testReporter
}

func (r run) tokens() []token.Token {
	out := make([]token.Token, len(r.results))
	for i, res := range r.results {
		out[i] = res.Token
	}
	return out
}

func tokenize(t *testing.T, input string, opts lexer.Options) run {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.html", []byte(input)))
	rep := &testReporter{}
	opts.Reporter = rep
	opts.Strict = true
	tz, err := lexer.New(file, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	results, err := tz.Collect()
	if err != nil {
		t.Fatalf("Collect(%q): %v", input, err)
	}
	r := run{file: file, results: results, tz: tz, reporter: rep}
	if err := testkit.CheckTokenStream(file, r.tokens()); err != nil {
		t.Fatalf("invariants on %q: %v\n%s", input, err, dump(r.tokens()))
	}
	return r
}

func dump(toks []token.Token) string {
	var sb strings.Builder
	for _, tok := range toks {
		fmt.Fprintf(&sb, "  %s %q payload=%q\n", tok.Kind, tok.Text, tok.Payload)
	}
	return sb.String()
}

func natural() lexer.Options {
	return lexer.Options{
		Features: lexer.Features{NaturalTemplate: true},
		Registry: lang.NewDefaultRegistry(),
	}
}

type want struct {
	kind    token.Kind
	text    string
	payload string
	format  token.Format
}

func expect(t *testing.T, r run, wants []want) {
	t.Helper()
	if len(r.results) != len(wants) {
		t.Fatalf("got %d tokens, want %d:\n%s", len(r.results), len(wants), dump(r.tokens()))
	}
	for i, w := range wants {
		res := r.results[i]
		if res.Token.Kind != w.kind || res.Token.Text != w.text || res.Token.Payload != w.payload || res.Format != w.format {
			t.Errorf("token %d = %s %q payload=%q format=%s, want %s %q payload=%q format=%s",
				i, res.Token.Kind, res.Token.Text, res.Token.Payload, res.Format,
				w.kind, w.text, w.payload, w.format)
		}
	}
}

func TestPlainLiteral(t *testing.T) {
	r := tokenize(t, "hello world", lexer.Options{})
	expect(t, r, []want{{kind: token.Text, text: "hello world"}})
	if r.tz.State() != lexer.StateDone {
		t.Fatalf("state = %s", r.tz.State())
	}
}

func TestEmptyInput(t *testing.T) {
	r := tokenize(t, "", lexer.Options{})
	if len(r.results) != 0 || r.tz.HasNext() {
		t.Fatalf("empty input produced %d tokens", len(r.results))
	}
	res, err := r.tz.Next()
	if err != nil || res.Token.Kind != token.EOF {
		t.Fatalf("Next on empty = %+v, %v", res, err)
	}
}

func TestGuardFallback(t *testing.T) {
	r := tokenize(t, "@", lexer.Options{})
	expect(t, r, []want{{kind: token.Text, text: "@"}})
	if r.tz.GuardFires() != 1 {
		t.Fatalf("guard fires = %d", r.tz.GuardFires())
	}
	if got := r.reporter.codes(); !slices.Equal(got, []diag.Code{diag.LexUnrecognizedInput}) {
		t.Fatalf("diagnostics = %v", got)
	}
	if r.results[0].Parser != "fail-through" {
		t.Fatalf("parser = %s", r.results[0].Parser)
	}
}

func TestGuardKeepsRunesWhole(t *testing.T) {
	r := tokenize(t, "@é", lexer.Options{})
	// "@é" is an expression: é is a letter
	expect(t, r, []want{{kind: token.Directive, text: "@é", payload: "expr"}})

	r = tokenize(t, "@\xff", lexer.Options{})
	expect(t, r, []want{
		{kind: token.Text, text: "@"},
		{kind: token.Text, text: "\xff"},
	})
}

func TestBlockCloseThenLiteral(t *testing.T) {
	r := tokenize(t, "}}tail", lexer.Options{Syntax: lexer.Syntax{BlockClose: "}}"}})
	expect(t, r, []want{
		{kind: token.BlockClose, text: "}}", format: token.FormatTrimSpacesIfLineBreak},
		{kind: token.Text, text: "tail"},
	})
	if got := r.reporter.codes(); !slices.Equal(got, []diag.Code{diag.LexUnbalancedBlockClose}) {
		t.Fatalf("diagnostics = %v", got)
	}
}

func TestSingleBraceIsTextWithDoubleClose(t *testing.T) {
	r := tokenize(t, "a}b}}", lexer.Options{Syntax: lexer.Syntax{BlockClose: "}}"}})
	expect(t, r, []want{
		{kind: token.Text, text: "a}b"},
		{kind: token.BlockClose, text: "}}", format: token.FormatTrimSpacesIfLineBreak},
	})
}

func TestDirectives(t *testing.T) {
	lb := token.FormatTrimLineBreakAndSpaces
	sp := token.FormatTrimSpacesIfLineBreak
	tests := []struct {
		name  string
		input string
		wants []want
	}{
		{"escape", "a@@b", []want{
			{kind: token.Text, text: "a"},
			{kind: token.Escape, text: "@@", payload: "@"},
			{kind: token.Text, text: "b"},
		}},
		{"line comment", "x @// note\ny", []want{
			{kind: token.Text, text: "x "},
			{kind: token.Comment, text: "@// note", format: lb},
			{kind: token.Text, text: "\ny"},
		}},
		{"block comment", "@* a } b *@z", []want{
			{kind: token.Comment, text: "@* a } b *@"},
			{kind: token.Text, text: "z"},
		}},
		{"if else", "@if (a > (b)) {x} @else if (c) {y} @else {z}", []want{
			{kind: token.BlockOpen, text: "@if (a > (b)) {", payload: "if", format: sp},
			{kind: token.Text, text: "x"},
			{kind: token.BlockClose, text: "}", format: sp},
			{kind: token.Text, text: " "},
			{kind: token.BlockOpen, text: "@else if (c) {", payload: "else if", format: sp},
			{kind: token.Text, text: "y"},
			{kind: token.BlockClose, text: "}", format: sp},
			{kind: token.Text, text: " "},
			{kind: token.BlockOpen, text: "@else {", payload: "else", format: sp},
			{kind: token.Text, text: "z"},
			{kind: token.BlockClose, text: "}", format: sp},
		}},
		{"for with newline before brace", "@for (i : items)\n{", []want{
			{kind: token.BlockOpen, text: "@for (i : items)\n{", payload: "for", format: sp},
		}},
		{"line directives", "@args String s\n@import a.b\n", []want{
			{kind: token.Directive, text: "@args String s", payload: "args", format: lb},
			{kind: token.Text, text: "\n"},
			{kind: token.Directive, text: "@import a.b", payload: "import", format: lb},
			{kind: token.Text, text: "\n"},
		}},
		{"expressions", "Hi @user.name(), @(a + b)!", []want{
			{kind: token.Text, text: "Hi "},
			{kind: token.Directive, text: "@user.name()", payload: "expr"},
			{kind: token.Text, text: ", "},
			{kind: token.Directive, text: "@(a + b)", payload: "expr"},
			{kind: token.Text, text: "!"},
		}},
		{"dangling dot", "@a.", []want{
			{kind: token.Directive, text: "@a", payload: "expr"},
			{kind: token.Text, text: "."},
		}},
		{"index and call", "@items[0].get(\")\")", []want{
			{kind: token.Directive, text: "@items[0].get(\")\")", payload: "expr"},
		}},
		{"reserved word is not an expression", "@if", []want{
			{kind: token.Text, text: "@"},
			{kind: token.Text, text: "if"},
		}},
		{"script", "@{ s = \"}\"; m = {a: '}'} } after", []want{
			{kind: token.Script, text: "@{ s = \"}\"; m = {a: '}'} }", payload: " s = \"}\"; m = {a: '}'} "},
			{kind: token.Text, text: " after"},
		}},
		{"script with host comment", "@{ // }\n x }", []want{
			{kind: token.Script, text: "@{ // }\n x }", payload: " // }\n x "},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expect(t, tokenize(t, tt.input, lexer.Options{}), tt.wants)
		})
	}
}

func TestUnterminatedScriptFallsThrough(t *testing.T) {
	r := tokenize(t, "@{ open", lexer.Options{})
	expect(t, r, []want{
		{kind: token.Text, text: "@"},
		{kind: token.Text, text: "{ open"},
	})
	if got := r.reporter.codes(); !slices.Equal(got, []diag.Code{diag.LexUnterminatedScript}) {
		t.Fatalf("diagnostics = %v", got)
	}

	r = tokenize(t, "@* open", lexer.Options{})
	if got := r.reporter.codes(); !slices.Equal(got, []diag.Code{diag.LexUnterminatedComment}) {
		t.Fatalf("diagnostics = %v", got)
	}
}

func TestLeftoverBlocks(t *testing.T) {
	r := tokenize(t, "@if (x) { @for (y) {", lexer.Options{})
	if lo := r.tz.Leftover(); lo.OpenBlocks != 2 || lo.Empty() {
		t.Fatalf("leftover = %+v", lo)
	}
	r = tokenize(t, "@if (x) { }", lexer.Options{})
	if lo := r.tz.Leftover(); !lo.Empty() {
		t.Fatalf("leftover = %+v", lo)
	}
}

func TestSensorToggling(t *testing.T) {
	input := "a<script>var x = 1;</script>b"
	r := tokenize(t, input, natural())
	expect(t, r, []want{
		{kind: token.Text, text: "a"},
		{kind: token.Sensor, payload: "js"},
		{kind: token.Text, text: "<script>var x = 1;"},
		{kind: token.Sensor, payload: "js"},
		{kind: token.Text, text: "</script>b"},
	})
	toks := r.tokens()
	if toks[1].Sense != token.SenseLangStart || toks[3].Sense != token.SenseLangEnd {
		t.Fatalf("senses = %s, %s", toks[1].Sense, toks[3].Sense)
	}
	if toks[1].Span.Start != 1 || toks[3].Span.Start != 19 {
		t.Fatalf("sensor offsets = %d, %d", toks[1].Span.Start, toks[3].Span.Start)
	}
	if lo := r.tz.Leftover(); !lo.Empty() {
		t.Fatalf("mode not restored: %+v", lo)
	}
}

func TestUnclosedLangIsLeftover(t *testing.T) {
	r := tokenize(t, "<style>p {", natural())
	lo := r.tz.Leftover()
	if !slices.Equal(lo.OpenLangs, []string{"css"}) {
		t.Fatalf("leftover = %+v", lo)
	}
}

func TestDirectiveComment(t *testing.T) {
	r := tokenize(t, "<!-- @if (x) { -->shown<!-- } -->", natural())
	sp := token.FormatTrimSpacesIfLineBreak
	expect(t, r, []want{
		{kind: token.Sensor, text: "<!-- "},
		{kind: token.BlockOpen, text: "@if (x) {", payload: "if", format: sp},
		{kind: token.Sensor, text: " -->"},
		{kind: token.Text, text: "shown"},
		{kind: token.Sensor, text: "<!-- "},
		{kind: token.BlockClose, text: "}", format: sp},
		{kind: token.Sensor, text: " -->"},
	})
	toks := r.tokens()
	if toks[0].Sense != token.SenseCommentStart || toks[2].Sense != token.SenseCommentEnd {
		t.Fatalf("senses = %s, %s", toks[0].Sense, toks[2].Sense)
	}
	if toks[4].Sense != token.SenseCommentStart || toks[6].Sense != token.SenseCommentEnd {
		t.Fatalf("closing senses = %s, %s", toks[4].Sense, toks[6].Sense)
	}
	if lo := r.tz.Leftover(); !lo.Empty() {
		t.Fatalf("leftover = %+v", lo)
	}
}

func TestCommentSensorNeedsDirectiveOrClose(t *testing.T) {
	r := tokenize(t, "<!-- x } -->", natural())
	expect(t, r, []want{
		{kind: token.Text, text: "<!-- x "},
		{kind: token.BlockClose, text: "}", format: token.FormatTrimSpacesIfLineBreak},
		{kind: token.Text, text: " -->"},
	})
}

func TestPlainCommentIsText(t *testing.T) {
	r := tokenize(t, "<!-- just html -->", natural())
	expect(t, r, []want{{kind: token.Text, text: "<!-- just html -->"}})
}

func TestNoSensorsWhenFeaturesOff(t *testing.T) {
	inputs := []string{
		"<script>a</script>",
		"<!-- @x -->",
		"<style></style><script>",
	}
	opts := lexer.Options{Registry: lang.NewDefaultRegistry()}
	for _, in := range inputs {
		r := tokenize(t, in, opts)
		for _, tok := range r.tokens() {
			if tok.IsSensor() {
				t.Errorf("%q produced a sensor token with features off", in)
			}
		}
	}
	if chain := lexer.Plan(lexer.Features{SmartEscape: true}); slices.Contains(chain, lexer.StageLangStart) {
		t.Errorf("lang sensors planned without template languages")
	}
}

func TestSmartEscapeHasNoCommentSensors(t *testing.T) {
	opts := lexer.Options{Features: lexer.Features{SmartEscape: true}, Registry: lang.NewDefaultRegistry()}
	r := tokenize(t, "<!-- @x --><script></script>", opts)
	var senses []token.Sense
	for _, tok := range r.tokens() {
		if tok.IsSensor() {
			senses = append(senses, tok.Sense)
		}
	}
	if !slices.Equal(senses, []token.Sense{token.SenseLangStart, token.SenseLangEnd}) {
		t.Fatalf("senses = %v", senses)
	}
}

func TestDeterminism(t *testing.T) {
	input := "@args int n\n<script>if (a) {}</script>@if (n > 0) {\n  @n\n}\n<!-- @x -->"
	first := tokenize(t, input, natural()).results
	for range 3 {
		again := tokenize(t, input, natural()).results
		if !slices.Equal(first, again) {
			t.Fatalf("runs differ")
		}
	}
}

func TestLineNumbers(t *testing.T) {
	r := tokenize(t, "a\n@b\n\n@c", lexer.Options{})
	var lines []uint32
	for _, tok := range r.tokens() {
		if tok.Kind == token.Directive {
			lines = append(lines, tok.Line)
		}
	}
	if !slices.Equal(lines, []uint32{2, 4}) {
		t.Fatalf("lines = %v", lines)
	}
	if r.tz.Line() != 4 {
		t.Fatalf("final line = %d", r.tz.Line())
	}
}

func TestEOFIsSticky(t *testing.T) {
	r := tokenize(t, "x", lexer.Options{})
	for range 2 {
		res, err := r.tz.Next()
		if err != nil || !res.Token.Kind.IsEOF() {
			t.Fatalf("Next after end = %+v, %v", res, err)
		}
	}
}

func TestAllStopsEarly(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t", []byte("a@b@c")))
	tz, err := lexer.New(file, lexer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	for range tz.All() {
		break
	}
	if tz.State() != lexer.StateIterating || !tz.HasNext() {
		t.Fatalf("state = %s", tz.State())
	}
}

func TestNewRejectsBadSyntax(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t", nil))
	if _, err := lexer.New(file, lexer.Options{Syntax: lexer.Syntax{Marker: 'x'}}); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestDispatchReportsWinner(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t", []byte("@// c")))
	ctx := lexer.NewContext(file, lexer.DefaultSyntax(), nil)
	p, res, ok := lexer.NewDispatcher().Dispatch(ctx)
	if !ok || p.Name() != "line-comment" || res.Format != p.Format() || res.Parser != p.Name() {
		t.Fatalf("Dispatch = %v, %+v, %v", p, res, ok)
	}
}

// Malformed input must not make the chain rescan the rest of the template
// at every position.
func TestMalformedInputStaysLinear(t *testing.T) {
	const size = 64 << 10
	tests := []struct {
		name   string
		input  string
		tokens int
	}{
		{"spaces in directive comment", "<!-- @x" + strings.Repeat(" ", size), 3},
		{"unterminated scripts", strings.Repeat("@{", size/2), size},
		{"unterminated conditions", strings.Repeat("@if (", size/4), size / 2},
		{"unterminated expressions", strings.Repeat("@(", size/2), size},
		{"unterminated calls", strings.Repeat("@a(", size/3), 2 * (size / 3)},
		{"unterminated indexes", strings.Repeat("@a[", size/3), 2 * (size / 3)},
		{"unterminated comments", strings.Repeat("@* ", size/3), 2 * (size / 3)},
		{"host comments in script", "@{" + strings.Repeat("/* ", size/3), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			r := tokenize(t, tt.input, natural())
			if elapsed := time.Since(start); elapsed > time.Second {
				t.Fatalf("took %v on %d bytes", elapsed, len(tt.input))
			}
			if len(r.results) != tt.tokens {
				t.Fatalf("got %d tokens, want %d", len(r.results), tt.tokens)
			}
		})
	}
}
