package token

// Sense describes the mode transition carried by a Sensor token.
type Sense uint8

const (
	SenseNone Sense = iota
	// SenseLangStart: a registered language block begins (zero-width).
	SenseLangStart
	// SenseLangEnd: the innermost language block ends (zero-width).
	SenseLangEnd
	// SenseCommentStart: "<!--" wrapping a directive (natural template).
	SenseCommentStart
	// SenseCommentEnd: the "-->" closing a directive comment.
	SenseCommentEnd
)

func (s Sense) String() string {
	switch s {
	case SenseNone:
		return "none"
	case SenseLangStart:
		return "lang-start"
	case SenseLangEnd:
		return "lang-end"
	case SenseCommentStart:
		return "comment-start"
	case SenseCommentEnd:
		return "comment-end"
	}
	return "unknown"
}

// ZeroWidth reports whether tokens with this sense never consume input.
func (s Sense) ZeroWidth() bool {
	return s == SenseLangStart || s == SenseLangEnd
}
