package ui

import (
	"errors"
	"strings"
	"testing"

	"quill/internal/driver"
)

func TestApplyEventTracksFiles(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("tokenize", []string{"a.html", "b.html"}, events).(*progressModel)

	m.applyEvent(driver.Event{File: "a.html", Stage: driver.StageTokenize, Status: driver.StatusWorking})
	if got := m.items[0].status; got != "tokenizing" {
		t.Fatalf("status = %q, want tokenizing", got)
	}
	if got := m.percent(); got != 0.25 {
		t.Fatalf("percent = %v, want 0.25", got)
	}

	m.applyEvent(driver.Event{File: "a.html", Stage: driver.StageTokenize, Status: driver.StatusDone, Tokens: 7, Cached: true})
	m.applyEvent(driver.Event{File: "b.html", Stage: driver.StageLoad, Status: driver.StatusError, Err: errors.New("boom")})
	m.applyEvent(driver.Event{File: "unknown.html", Status: driver.StatusDone})

	if m.finished() != 2 {
		t.Fatalf("finished = %d, want 2", m.finished())
	}
	if got := m.percent(); got != 1 {
		t.Fatalf("percent = %v, want 1", got)
	}

	view := m.View()
	for _, want := range []string{"(2/2)", "a.html", "7 tokens (cached)", "error"} {
		if !strings.Contains(view, want) {
			t.Errorf("view misses %q:\n%s", want, view)
		}
	}
}

func TestDoneOnClosedChannel(t *testing.T) {
	events := make(chan driver.Event)
	close(events)
	m := NewProgressModel("tokenize", []string{"a.html"}, events).(*progressModel)

	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("msg = %T, want doneMsg", msg)
	}
	m.Update(msg)
	if !m.done {
		t.Fatal("model not done after channel closed")
	}
	if !strings.Contains(m.View(), "done: tokenize") {
		t.Errorf("view = %q", m.View())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"templates/index.html", 10, "temp..."},
		{"abcdef", 3, "abc"},
		{"any", 0, "any"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
