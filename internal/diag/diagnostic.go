package diag

import (
	"rune/internal/source"
)

// Note attaches secondary context to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is a single compiler or runtime finding. The zero Primary span
// means the finding has no source location.
type Diagnostic struct {
	Severity Severity
	Message  string
	Primary  source.Span
	Notes    []Note
}

func New(sev Severity, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(primary source.Span, msg string) Diagnostic {
	return New(SevError, primary, msg)
}

func NewWarning(primary source.Span, msg string) Diagnostic {
	return New(SevWarning, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
