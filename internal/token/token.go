package token

import (
	"quill/internal/source"
)

// Token represents a single template token with its location.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Payload string // имя директивы, тело скрипта, язык сенсора...
	Sense   Sense  // только для Kind == Sensor
	Line    uint32 // 1-based line of Span.Start
}

// IsSensor reports whether the token is a mode-transition marker.
func (t Token) IsSensor() bool { return t.Kind == Sensor }

// IsLiteral reports whether the token contributes literal output.
func (t Token) IsLiteral() bool {
	return t.Kind == Text || t.Kind == Escape
}

// IsBlock reports whether the token opens or closes a directive block.
func (t Token) IsBlock() bool {
	return t.Kind == BlockOpen || t.Kind == BlockClose
}

// ZeroWidth reports whether the token covers no source bytes.
func (t Token) ZeroWidth() bool { return t.Span.Empty() }
