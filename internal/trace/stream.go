package trace

import (
	"io"
	"sync"
)

// StreamTracer writes events immediately to an io.Writer.
type StreamTracer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

// NewStreamTracer creates a new StreamTracer.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{w: w, level: level, format: format}
}

// Emit writes an event to the output.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	// trace output is best effort, tokenization must not fail because of it
	_, _ = t.w.Write(data) //nolint:errcheck
}

// Flush calls Flush on the writer when it has one.
func (t *StreamTracer) Flush() error {
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
