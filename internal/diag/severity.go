package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the lower- or upper-case names printed by String.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INFO":
		return SevInfo, nil
	case "WARNING", "WARN":
		return SevWarning, nil
	case "ERROR":
		return SevError, nil
	}
	return SevError, fmt.Errorf("invalid severity %q (expected: info|warning|error)", s)
}

// AtLeast reports whether s is as severe as min.
func (s Severity) AtLeast(min Severity) bool { return s >= min }
