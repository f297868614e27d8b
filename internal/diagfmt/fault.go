package diagfmt

import (
	"fmt"
	"io"

	"rune/internal/diag"
	"rune/internal/engine"
	"rune/internal/source"
)

// Fault renders a runtime fault: a diagnostic-style header for the fault
// itself, then the backtrace most-recent-call-first, one indented line per
// frame:
//
//	  at <frame-name> (<path:line:col>)
//	  at <frame-name> (unknown)
func Fault(w io.Writer, fault *engine.Fault, files *source.FileSet, opts PrettyOpts) {
	label := severityLabel(diag.SevError, opts.Color)
	if loc := Location(fault.Span, files); loc != "<unknown>" {
		fmt.Fprintf(w, "%s: %s: %s\n", loc, label, fault.Message)
	} else {
		fmt.Fprintf(w, "%s: %s\n", label, fault.Message)
	}

	if opts.Preview && !fault.Span.Empty() {
		writePreview(w, fault.Span, files)
	}

	for _, frame := range fault.Frames {
		fmt.Fprintf(w, "  at %s (%s)\n", frame.Function, frameLocation(frame, files))
	}
}

func frameLocation(frame engine.Frame, files *source.FileSet) string {
	if frame.Span.Empty() {
		return "unknown"
	}
	if loc := Location(frame.Span, files); loc != "<unknown>" {
		return loc
	}
	return "unknown"
}
