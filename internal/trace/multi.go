package trace

import "errors"

// MultiTracer fans out trace events to multiple tracers.
type MultiTracer struct {
	tracers []Tracer
	level   Level
}

// NewMultiTracer creates a new MultiTracer that emits to all provided tracers.
func NewMultiTracer(level Level, tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers, level: level}
}

// Emit sends a copy of the event to every tracer so one cannot observe
// another's sequence numbering.
func (t *MultiTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		cp := *ev
		tr.Emit(&cp)
	}
}

// Flush flushes all underlying tracers.
func (t *MultiTracer) Flush() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

// Close closes all underlying tracers.
func (t *MultiTracer) Close() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
