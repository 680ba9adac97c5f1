package diag

import "quill/internal/source"

// New builds a diagnostic without notes.
func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

// NewError is New with SevError.
func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// NewWarning is New with SevWarning.
func NewWarning(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

// WithNote returns d with one more note; d itself is not modified.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	notes := make([]Note, len(d.Notes), len(d.Notes)+1)
	copy(notes, d.Notes)
	d.Notes = append(notes, Note{Span: sp, Msg: msg})
	return d
}
