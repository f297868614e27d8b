// Package diagfmt renders diagnostics and runtime faults into text. All
// functions are pure with respect to everything but the passed writer: the
// caller decides where the text goes and when.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"rune/internal/diag"
	"rune/internal/source"
)

// Entries are force-enabled: opts.Color is the only switch, independent of
// the process-global color.NoColor (which probes stdout while diagnostics
// usually go to stderr).
var severityColors = map[diag.Severity]*color.Color{
	diag.SevInfo:    forcedColor(color.FgCyan),
	diag.SevWarning: forcedColor(color.FgYellow, color.Bold),
	diag.SevError:   forcedColor(color.FgRed, color.Bold),
}

func forcedColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

func severityLabel(sev diag.Severity, colored bool) string {
	if !colored {
		return sev.String()
	}
	c, ok := severityColors[sev]
	if !ok {
		return sev.String()
	}
	return c.Sprint(sev.String())
}

// Pretty writes one line per diagnostic, in the order given:
//
//	path:line:col: severity: message    (span present)
//	path: severity: message             (no span)
//
// followed by indented notes and, when opts.Preview is set, the source line
// with a caret underline.
func Pretty(w io.Writer, items []diag.Diagnostic, files *source.FileSet, opts PrettyOpts) {
	for _, d := range items {
		fmt.Fprintf(w, "%s: %s: %s\n",
			Location(d.Primary, files),
			severityLabel(d.Severity, opts.Color),
			d.Message)

		if opts.Preview && !d.Primary.Empty() {
			writePreview(w, d.Primary, files)
		}

		for _, n := range d.Notes {
			if n.Span.Empty() {
				fmt.Fprintf(w, "  note: %s\n", n.Msg)
			} else {
				fmt.Fprintf(w, "  note: %s: %s\n", Location(n.Span, files), n.Msg)
			}
		}
	}
}

// PrettyBag renders a whole bag and appends a truncation notice when the
// bag's cap dropped diagnostics.
func PrettyBag(w io.Writer, bag *diag.Bag, files *source.FileSet, opts PrettyOpts) {
	Pretty(w, bag.Items(), files, opts)
	if n := bag.Truncated(); n > 0 {
		fmt.Fprintf(w, "... and %d more diagnostics not shown\n", n)
	}
}

// Headline writes a bare severity-prefixed line with no source location,
// for failures that happen outside any loaded file.
func Headline(w io.Writer, sev diag.Severity, msg string, opts PrettyOpts) {
	fmt.Fprintf(w, "%s: %s\n", severityLabel(sev, opts.Color), msg)
}

// Location formats a span as "path:line:col", or just "path" for a span
// without extent, or "<unknown>" when the file is not in the set.
func Location(span source.Span, files *source.FileSet) string {
	if files == nil {
		return "<unknown>"
	}
	f := files.Get(span.File)
	if f == nil {
		return "<unknown>"
	}
	if span.Empty() {
		return f.Path
	}
	start, _ := files.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", f.Path, start.Line, start.Col)
}

// writePreview prints the first source line a span covers plus a caret
// underline aligned with display width, so wide runes stay lined up.
func writePreview(w io.Writer, span source.Span, files *source.FileSet) {
	f := files.Get(span.File)
	if f == nil {
		return
	}
	start, end := files.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" && start.Col > 1 {
		return
	}

	col := int(start.Col)
	if col > len(line)+1 {
		col = len(line) + 1
	}
	prefix := line[:col-1]

	// The underline stops at the end of the span or of the line,
	// whichever comes first.
	underlined := line[col-1:]
	if start.Line == end.Line && int(end.Col) >= col {
		if n := int(end.Col) - col; n <= len(underlined) {
			underlined = underlined[:n]
		}
	}
	caretWidth := runewidth.StringWidth(underlined)
	if caretWidth < 1 {
		caretWidth = 1
	}

	fmt.Fprintf(w, "  %s\n", line)
	fmt.Fprintf(w, "  %s%s\n",
		strings.Repeat(" ", runewidth.StringWidth(prefix)),
		strings.Repeat("^", caretWidth))
}
