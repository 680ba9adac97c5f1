package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one file.
type Span struct {
	File  FileID `json:"file" msgpack:"f"`
	Start uint32 `json:"start" msgpack:"s"` // включительно
	End   uint32 `json:"end" msgpack:"e"`   // не включительно
}

// Empty reports whether the span covers zero bytes.
func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
// Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Adjacent reports whether other starts exactly where s ends.
func (s Span) Adjacent(other Span) bool {
	return s.File == other.File && s.End == other.Start
}
