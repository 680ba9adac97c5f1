// Package lang holds the registry of extension template languages. A
// language with block markers (for example JavaScript inside <script>) lets
// the tokenizer sense when the template enters and leaves a region whose
// content has different escaping rules.
package lang

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Lang describes one extension language.
type Lang struct {
	Name       string
	BlockStart *regexp.Regexp // anchored, nil if the language has no block form
	BlockEnd   *regexp.Regexp // anchored
}

// Spec is the uncompiled form of Lang used by configuration.
type Spec struct {
	Name       string `toml:"name" yaml:"name"`
	BlockStart string `toml:"block_start" yaml:"block_start"`
	BlockEnd   string `toml:"block_end" yaml:"block_end"`
}

var (
	// ErrDuplicate is returned when a language name is registered twice.
	ErrDuplicate = errors.New("language already registered")
	// ErrIncomplete is returned when only one of the block markers is set.
	ErrIncomplete = errors.New("block_start and block_end must be set together")
	// ErrNotTag is returned when a block marker does not begin with '<'.
	ErrNotTag = errors.New("block markers must start with a literal '<'")
)

// foldName case-folds a language name. A Caser keeps state, so each call
// gets its own.
func foldName(name string) string { return cases.Fold().String(name) }

// Compile validates s and builds a Lang with both patterns anchored at the
// start of the input.
func Compile(s Spec) (*Lang, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return nil, errors.New("language name is empty")
	}
	if (s.BlockStart == "") != (s.BlockEnd == "") {
		return nil, fmt.Errorf("lang %s: %w", name, ErrIncomplete)
	}
	l := &Lang{Name: name}
	if s.BlockStart == "" {
		return l, nil
	}
	// сенсоры проверяют маркеры только на '<'
	if !strings.HasPrefix(s.BlockStart, "<") || !strings.HasPrefix(s.BlockEnd, "<") {
		return nil, fmt.Errorf("lang %s: %w", name, ErrNotTag)
	}
	var err error
	if l.BlockStart, err = regexp.Compile(`^(?:` + s.BlockStart + `)`); err != nil {
		return nil, fmt.Errorf("lang %s: block_start: %w", name, err)
	}
	if l.BlockEnd, err = regexp.Compile(`^(?:` + s.BlockEnd + `)`); err != nil {
		return nil, fmt.Errorf("lang %s: block_end: %w", name, err)
	}
	return l, nil
}

// HasBlocks reports whether the language can open a block inside a template.
func (l *Lang) HasBlocks() bool {
	return l != nil && l.BlockStart != nil && l.BlockEnd != nil
}

// MatchStart returns the length of the block-start marker at the head of b.
func (l *Lang) MatchStart(b []byte) (int, bool) {
	if !l.HasBlocks() {
		return 0, false
	}
	loc := l.BlockStart.FindIndex(b)
	if loc == nil {
		return 0, false
	}
	return loc[1], true
}

// MatchEnd returns the length of the block-end marker at the head of b.
func (l *Lang) MatchEnd(b []byte) (int, bool) {
	if !l.HasBlocks() {
		return 0, false
	}
	loc := l.BlockEnd.FindIndex(b)
	if loc == nil {
		return 0, false
	}
	return loc[1], true
}

// Registry is an ordered set of languages. Lookups are case-insensitive.
// It is written during configuration and read concurrently afterwards.
type Registry struct {
	mu    sync.RWMutex
	langs []*Lang
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Defaults returns the built-in script/style languages of HTML templates.
func Defaults() []Spec {
	return []Spec{
		{Name: "js", BlockStart: `<\s*script[^<>]*>`, BlockEnd: `<\s*/\s*script\s*>`},
		{Name: "css", BlockStart: `<\s*style[^<>]*>`, BlockEnd: `<\s*/\s*style\s*>`},
	}
}

// NewDefaultRegistry returns a registry holding Defaults.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range Defaults() {
		if err := r.RegisterSpec(s); err != nil {
			panic(fmt.Errorf("default language %s: %w", s.Name, err))
		}
	}
	return r
}

// Register adds l. Registration order is the order sensors try languages.
func (r *Registry) Register(l *Lang) error {
	key := foldName(l.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[key]; ok {
		return fmt.Errorf("%s: %w", l.Name, ErrDuplicate)
	}
	r.index[key] = len(r.langs)
	r.langs = append(r.langs, l)
	return nil
}

// RegisterSpec compiles and registers s.
func (r *Registry) RegisterSpec(s Spec) error {
	l, err := Compile(s)
	if err != nil {
		return err
	}
	return r.Register(l)
}

// Lookup finds a language by name.
func (r *Registry) Lookup(name string) (*Lang, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[foldName(name)]
	if !ok {
		return nil, false
	}
	return r.langs[i], true
}

// Langs returns the registered languages in registration order.
func (r *Registry) Langs() []*Lang {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Lang(nil), r.langs...)
}

// Len returns the number of registered languages.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.langs)
}

// HasTemplateLangs reports whether at least one registered language can
// open a block, i.e. whether language sensors have anything to sense.
func (r *Registry) HasTemplateLangs() bool {
	for _, l := range r.Langs() {
		if l.HasBlocks() {
			return true
		}
	}
	return false
}
