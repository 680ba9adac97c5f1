package diag

import "quill/internal/source"

// DedupReporter forwards each distinct (code, severity, span, message) once.
// A template that keeps tripping the same construct, for example a cached
// stream replayed into a bag that already holds its warnings, reports it a
// single time.
type DedupReporter struct {
	next       Reporter
	seen       map[dedupKey]struct{}
	suppressed int
}

type dedupKey struct {
	code Code
	sev  Severity
	span source.Span
	msg  string
}

// NewDedupReporter wraps next.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	key := dedupKey{code: code, sev: sev, span: primary, msg: msg}
	if _, dup := r.seen[key]; dup {
		r.suppressed++
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}

// Suppressed returns how many reports were dropped as duplicates.
func (r *DedupReporter) Suppressed() int {
	if r == nil {
		return 0
	}
	return r.suppressed
}
