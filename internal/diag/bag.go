package diag

import (
	"fmt"
	"math"
	"sort"
)

// Bag collects diagnostics of one tokenization run up to a fixed limit.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

func NewBag(max int) *Bag {
	if max <= 0 {
		max = math.MaxUint16
	}
	return &Bag{
		items: make([]Diagnostic, 0, min(max, 64)),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// Dropped returns how many diagnostics were rejected by the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез!
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge объединяет диагностики из другого Bag, расширяя лимит при необходимости.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := len(b.items) + len(other.items); total > b.max {
		b.max = total
	}
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Sort сортирует диагностики по: file, start, end, severity (desc), code (asc)
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// простая дедупликация (по Code+Primary)
func (b *Bag) Dedup() {
	seen := make(map[string]bool)
	newitems := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%s", d.Code.ID(), d.Primary.String())
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, d)
	}
	b.items = newitems
}
