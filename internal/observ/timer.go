// Package observ measures how long the phases of a tokenizer run take
// (cache lookup, tokenize, cache write).
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase records the duration and metadata of one phase.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks the execution time of consecutive phases. It is not safe for
// concurrent use; each template run owns its own Timer.
type Timer struct {
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Summary returns a human-readable string summarizing all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-20s %7.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Merge adds the phases of other to r, summing durations of phases with the
// same name. Directory runs use it to build one report over all templates.
func (r *Report) Merge(other Report) {
	for _, p := range other.Phases {
		found := false
		for i := range r.Phases {
			if r.Phases[i].Name == p.Name {
				r.Phases[i].DurationMS += p.DurationMS
				found = true
				break
			}
		}
		if !found {
			r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: p.DurationMS})
		}
	}
	r.TotalMS += other.TotalMS
}

// Report формирует срез фаз и общую длительность в миллисекундах.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
