package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopeDriver, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeToken, false},
		{LevelDebug, ScopeToken, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "phase", "DETAIL", "debug"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)

	span := Begin(tr, ScopeFile, "tokenize", 0)
	Point(tr, ScopeToken, "fail-through", "line 1 offset 0")
	span.WithExtra("tokens", "3").End("")

	out := buf.String()
	for _, want := range []string{"→ tokenize", "• fail-through (line 1 offset 0)", "← tokenize {tokens=3}"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStreamTracerFiltersScope(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)
	Point(tr, ScopeToken, "fail-through", "")
	if buf.Len() != 0 {
		t.Fatalf("token scope emitted at detail level: %s", buf.String())
	}
	Point(tr, ScopeFile, "loaded", "")
	if !strings.Contains(buf.String(), `"name":"loaded"`) {
		t.Fatalf("unexpected ndjson: %s", buf.String())
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(r, ScopeToken, name, "")
	}
	got := r.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("snapshot = %+v", got)
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop without tracer")
	}
	r := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), r)
	span := Begin(FromContext(ctx), ScopeDriver, "run", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() || span.ID() == 0 {
		t.Fatalf("span id not propagated")
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatalf("off tracer must be disabled")
	}
}
