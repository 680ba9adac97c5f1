package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last N events in memory.
type RingTracer struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	level    Level
}

// NewRingTracer creates a new RingTracer with specified capacity.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{
		events:   make([]Event, capacity),
		capacity: capacity,
		level:    level,
	}
}

// Emit adds an event to the ring buffer.
func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	stored := *ev
	stored.Seq = NextSeq()
	t.events[t.head] = stored
	t.head = (t.head + 1) % t.capacity
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns a copy of all stored events in chronological order.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		out := make([]Event, t.head)
		copy(out, t.events[:t.head])
		return out
	}
	out := make([]Event, t.capacity)
	n := copy(out, t.events[t.head:])
	copy(out[n:], t.events[:t.head])
	return out
}

// Dump writes all events to w in the given format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
