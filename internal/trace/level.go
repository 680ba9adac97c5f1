package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelPhase               // driver boundaries
	LevelDetail              // per-template events
	LevelDebug               // everything including tokenizer decisions
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// String returns the string representation of Level.
func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(l), nil //nolint:gosec // bounded by levelNames
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|phase|detail|debug)", s)
}

// ShouldEmit returns true if the given scope should emit at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelPhase:
		return scope <= ScopeDriver
	case LevelDetail:
		return scope <= ScopeFile
	case LevelDebug:
		return true
	}
	return false
}
