package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quill/internal/lexer"
	"quill/internal/source"
	"quill/internal/token"
)

func TestRemoveSpaceToLastLineBreak(t *testing.T) {
	tests := []struct {
		in      string
		atStart bool
		want    string
	}{
		{"a\n   ", false, "a"},
		{"a\r\n\t", false, "a"},
		{"a\n", false, "a"},
		{"a\nb ", false, "a\nb "},
		{"   ", false, "   "},
		{"   ", true, ""},
		{"a\n\n  ", false, "a\n"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, removeSpaceToLastLineBreak(tt.in, tt.atStart), "input %q", tt.in)
	}
}

func TestRemoveSpaceTillLastLineBreak(t *testing.T) {
	tests := []struct {
		in      string
		atStart bool
		want    string
	}{
		{"a\n   ", false, "a\n"},
		{"a\n", false, "a\n"},
		{"a  ", false, "a  "},
		{"  ", false, "  "},
		{"  ", true, ""},
		{"a\n x", false, "a\n x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, removeSpaceTillLastLineBreak(tt.in, tt.atStart), "input %q", tt.in)
	}
}

func assembleString(t *testing.T, src string) *Builder {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.html", []byte(src)))
	tz, err := lexer.New(file, lexer.Options{})
	require.NoError(t, err)
	var b Builder
	require.NoError(t, b.AddAll(tz))
	return &b
}

func TestBuilderAppliesHints(t *testing.T) {
	src := "<ul>\n  @for (x : xs) {\n  <li>@x</li>\n  }\n</ul>\n"
	b := assembleString(t, src)

	assert.Equal(t,
		"<ul>\n{{BlockOpen for}}\n  <li>{{Directive expr}}</li>\n{{BlockClose}}\n</ul>\n",
		b.Render())
	assert.Equal(t, 4, b.Trimmed())
}

func TestBuilderLineDirectiveRemovesLine(t *testing.T) {
	b := assembleString(t, "Hello\n  @args String name\nWorld")
	assert.Equal(t, "Hello\nWorld", b.Text())
}

func TestBuilderEscapesAndComments(t *testing.T) {
	b := assembleString(t, "mail@@host @* note *@done")
	assert.Equal(t, "mail@host done", b.Text())
	require.Len(t, b.Parts(), 1)
	assert.Equal(t, token.Text, b.Parts()[0].Kind)
}

func TestBuilderIgnoresHintAfterDirective(t *testing.T) {
	var b Builder
	b.Add(lexer.Result{Token: token.Token{Kind: token.Directive, Text: "@x", Payload: "expr"}})
	b.Add(lexer.Result{Token: token.Token{Kind: token.BlockClose, Text: "}"}, Format: token.FormatTrimSpacesIfLineBreak})
	assert.Equal(t, "{{Directive expr}}{{BlockClose}}", b.Render())
	assert.Zero(t, b.Trimmed())
}
