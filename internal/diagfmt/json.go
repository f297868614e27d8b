package diagfmt

import (
	"encoding/json"
	"io"

	"rune/internal/diag"
	"rune/internal/source"
)

type jsonNote struct {
	Path    string `json:"path,omitempty"`
	Line    uint32 `json:"line,omitempty"`
	Col     uint32 `json:"col,omitempty"`
	Message string `json:"message"`
}

type jsonDiagnostic struct {
	Path     string     `json:"path,omitempty"`
	Line     uint32     `json:"line,omitempty"`
	Col      uint32     `json:"col,omitempty"`
	Severity string     `json:"severity"`
	Message  string     `json:"message"`
	Notes    []jsonNote `json:"notes,omitempty"`
}

// JSON writes the diagnostics as an indented JSON array, in the order given.
func JSON(w io.Writer, items []diag.Diagnostic, files *source.FileSet, opts JSONOpts) error {
	payload := make([]jsonDiagnostic, 0, len(items))
	for _, d := range items {
		jd := jsonDiagnostic{
			Severity: d.Severity.String(),
			Message:  d.Message,
		}
		jd.Path, jd.Line, jd.Col = jsonLocation(d.Primary, files)
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				jn := jsonNote{Message: n.Msg}
				jn.Path, jn.Line, jn.Col = jsonLocation(n.Span, files)
				jd.Notes = append(jd.Notes, jn)
			}
		}
		payload = append(payload, jd)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func jsonLocation(span source.Span, files *source.FileSet) (path string, line, col uint32) {
	if files == nil {
		return "", 0, 0
	}
	f := files.Get(span.File)
	if f == nil {
		return "", 0, 0
	}
	if span.Empty() {
		return f.Path, 0, 0
	}
	start, _ := files.Resolve(span)
	return f.Path, start.Line, start.Col
}
