package assemble

import "strings"

// tailAfterBreak splits s at its last line break. ok is false when the text
// after the break is not blank.
func tailAfterBreak(s string) (head string, hasBreak, ok bool) {
	i := strings.LastIndexByte(s, '\n')
	if strings.TrimLeft(s[i+1:], " \t") != "" {
		return s, false, false
	}
	if i < 0 {
		return "", false, true
	}
	return s[:i+1], true, true
}

// removeSpaceToLastLineBreak drops the blank tail of s together with the line
// break before it, so a directive alone on its line leaves no empty line.
func removeSpaceToLastLineBreak(s string, atStart bool) string {
	head, hasBreak, ok := tailAfterBreak(s)
	switch {
	case !ok:
		return s
	case !hasBreak:
		if atStart {
			return ""
		}
		return s
	}
	head = head[:len(head)-1]
	return strings.TrimSuffix(head, "\r")
}

// removeSpaceTillLastLineBreak drops the blank tail of s but keeps the line
// break.
func removeSpaceTillLastLineBreak(s string, atStart bool) string {
	head, hasBreak, ok := tailAfterBreak(s)
	if !ok || (!hasBreak && !atStart) {
		return s
	}
	return head
}
