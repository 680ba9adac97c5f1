package token

// Format is the formatting side-channel raised alongside a token. It asks
// the consumer to trim whitespace in the literal text emitted just before
// the token. A token carries at most one Format.
type Format uint8

const (
	// FormatNone leaves adjacent text untouched.
	FormatNone Format = iota
	// FormatTrimLineBreakAndSpaces removes trailing spaces of the preceding
	// text together with the last line break before them.
	FormatTrimLineBreakAndSpaces
	// FormatTrimSpacesIfLineBreak removes trailing spaces of the preceding
	// text only when a line break precedes them (the token starts a line).
	FormatTrimSpacesIfLineBreak
)

func (f Format) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatTrimLineBreakAndSpaces:
		return "trim-leading-linebreak-and-spaces"
	case FormatTrimSpacesIfLineBreak:
		return "trim-leading-spaces-if-line-break"
	}
	return "unknown"
}
