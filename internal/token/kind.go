package token

// Kind represents the category of a template token.
type Kind uint8

const (
	// Invalid is the zero value and is never emitted.
	Invalid Kind = iota
	// EOF marks the end of the template.
	EOF

	// Text is a run of literal template text.
	Text
	// Escape is an escaped directive marker (e.g. "@@"); Payload holds the literal value.
	Escape
	// Comment is a template comment ("@// ..." or "@* ... *@").
	Comment
	// Directive is a non-block directive ("@args", "@import", "@expr").
	Directive
	// BlockOpen is a directive that opens a block ("@if (...) {").
	BlockOpen
	// BlockClose closes the innermost block.
	BlockClose
	// Script is an embedded host-language run ("@{ ... }").
	Script
	// Sensor marks a mode transition; see Sense.
	Sensor
)

var kindNames = [...]string{
	Invalid:    "Invalid",
	EOF:        "EOF",
	Text:       "Text",
	Escape:     "Escape",
	Comment:    "Comment",
	Directive:  "Directive",
	BlockOpen:  "BlockOpen",
	BlockClose: "BlockClose",
	Script:     "Script",
	Sensor:     "Sensor",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsEOF reports whether k marks the end of the stream.
func (k Kind) IsEOF() bool { return k == EOF }

// ParseKind maps a name produced by Kind.String back to the Kind.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true //nolint:gosec // len(kindNames) < 256
		}
	}
	return Invalid, false
}
