package token_test

import (
	"testing"

	"quill/internal/source"
	"quill/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 1}}
}

func TestKindStringRoundTrip(t *testing.T) {
	for k := token.Invalid; k <= token.Sensor; k++ {
		got, ok := token.ParseKind(k.String())
		if !ok || got != k {
			t.Fatalf("ParseKind(%q) = %v,%v", k.String(), got, ok)
		}
	}
	if _, ok := token.ParseKind("Nope"); ok {
		t.Fatalf("unknown kind must not parse")
	}
	if token.Kind(200).String() != "Kind(?)" {
		t.Fatalf("out-of-range kind string")
	}
}

func TestIsLiteral(t *testing.T) {
	for _, k := range []token.Kind{token.Text, token.Escape} {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	for _, k := range []token.Kind{token.Directive, token.BlockOpen, token.Sensor, token.Comment} {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestIsBlock(t *testing.T) {
	if !tok(token.BlockOpen).IsBlock() || !tok(token.BlockClose).IsBlock() {
		t.Fatalf("block kinds must report IsBlock")
	}
	if tok(token.Script).IsBlock() {
		t.Fatalf("Script must not be a block token")
	}
}

func TestSenseZeroWidth(t *testing.T) {
	zero := map[token.Sense]bool{
		token.SenseNone:         false,
		token.SenseLangStart:    true,
		token.SenseLangEnd:      true,
		token.SenseCommentStart: false,
		token.SenseCommentEnd:   false,
	}
	for s, want := range zero {
		if s.ZeroWidth() != want {
			t.Errorf("%v.ZeroWidth() = %v, want %v", s, s.ZeroWidth(), want)
		}
	}
}

func TestFormatString(t *testing.T) {
	if token.FormatTrimLineBreakAndSpaces.String() != "trim-leading-linebreak-and-spaces" {
		t.Fatalf("unexpected %q", token.FormatTrimLineBreakAndSpaces.String())
	}
	if token.FormatTrimSpacesIfLineBreak.String() != "trim-leading-spaces-if-line-break" {
		t.Fatalf("unexpected %q", token.FormatTrimSpacesIfLineBreak.String())
	}
}
