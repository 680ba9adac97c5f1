package trace

import (
	"sync/atomic"
	"time"
)

var (
	globalSeq   atomic.Uint64
	globalSpans atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return globalSeq.Add(1) }

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 { return globalSpans.Add(1) }

// Span tracks one begin/end pair.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	scope    Scope
	name     string
	started  time.Time
	extra    map[string]string
}

// Begin starts a new span and emits KindSpanBegin.
// parent is the parent span ID (0 if root).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop}
	}
	id := NextSpanID()
	now := time.Now()
	t.Emit(&Event{
		Time:     now,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   id,
		ParentID: parent,
		Name:     name,
	})
	return &Span{
		tracer:   t,
		id:       id,
		parentID: parent,
		scope:    scope,
		name:     name,
		started:  now,
	}
}

// End emits KindSpanEnd and returns the duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return 0
	}
	dur := time.Since(s.started)
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		Name:     s.name,
		Detail:   detail,
		Extra:    s.extra,
	})
	return dur
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event.
func Point(t Tracer, scope Scope, name, detail string) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Kind:   KindPoint,
		Scope:  scope,
		Name:   name,
		Detail: detail,
	})
}
