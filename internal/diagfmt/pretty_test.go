package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"rune/internal/diag"
	"rune/internal/source"
)

// spanOf locates needle inside the file and returns its span.
func spanOf(t *testing.T, files *source.FileSet, id source.FileID, needle string) source.Span {
	t.Helper()
	f := files.Get(id)
	idx := strings.Index(string(f.Content), needle)
	if idx < 0 {
		t.Fatalf("needle %q not in file %s", needle, f.Path)
	}
	return source.Span{File: id, Start: uint32(idx), End: uint32(idx + len(needle))}
}

func TestPrettyWithSpan(t *testing.T) {
	files := source.NewFileSet()
	id := files.AddVirtual("bad.rn", []byte("let x = 1\nlet y = 2\nbad syntax here\n"))
	span := spanOf(t, files, id, "bad")

	var sb strings.Builder
	Pretty(&sb, []diag.Diagnostic{diag.NewError(span, "unexpected token")}, files, PrettyOpts{})

	got := sb.String()
	if !strings.HasPrefix(got, "bad.rn:3:1: error: unexpected token\n") {
		t.Errorf("unexpected first line:\n%s", got)
	}
}

func TestPrettyWithoutSpan(t *testing.T) {
	files := source.NewFileSet()
	id := files.AddVirtual("bad.rn", []byte("let x = 1\n"))

	var sb strings.Builder
	Pretty(&sb, []diag.Diagnostic{diag.NewWarning(source.Span{File: id}, "unused import")}, files, PrettyOpts{})

	want := "bad.rn: warning: unused import\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestPrettyPreviewCaret(t *testing.T) {
	files := source.NewFileSet()
	id := files.AddVirtual("bad.rn", []byte("let x = 1\nlet y == 2\n"))
	span := spanOf(t, files, id, "==")

	var sb strings.Builder
	Pretty(&sb, []diag.Diagnostic{diag.NewError(span, "double equals")}, files, PrettyOpts{Preview: true})

	lines := strings.Split(sb.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected at least 3 lines, got %q", sb.String())
	}
	if lines[1] != "  let y == 2" {
		t.Errorf("preview line = %q", lines[1])
	}
	if lines[2] != "        ^^" {
		t.Errorf("caret line = %q", lines[2])
	}
}

func TestPrettyKeepsDetectionOrderAndPrintsOnce(t *testing.T) {
	files := source.NewFileSet()
	id := files.AddVirtual("bad.rn", []byte("aaa\nbbb\n"))

	items := []diag.Diagnostic{
		diag.NewError(spanOf(t, files, id, "bbb"), "second line problem"),
		diag.NewError(spanOf(t, files, id, "aaa"), "first line problem"),
	}

	var sb strings.Builder
	Pretty(&sb, items, files, PrettyOpts{})
	got := sb.String()

	// Detection order, not source order.
	first := strings.Index(got, "second line problem")
	second := strings.Index(got, "first line problem")
	if first < 0 || second < 0 || first > second {
		t.Errorf("wrong ordering:\n%s", got)
	}
	if strings.Count(got, "second line problem") != 1 {
		t.Errorf("diagnostic printed more than once:\n%s", got)
	}
}

func TestPrettyBagTruncationNotice(t *testing.T) {
	files := source.NewFileSet()
	files.AddVirtual("bad.rn", []byte("x\n"))

	bag := diag.NewBag(1)
	bag.Add(diag.NewError(source.Span{}, "kept"))
	bag.Add(diag.NewError(source.Span{}, "dropped"))

	var sb strings.Builder
	PrettyBag(&sb, bag, files, PrettyOpts{})
	got := sb.String()
	if !strings.Contains(got, "kept") {
		t.Errorf("missing kept diagnostic:\n%s", got)
	}
	if strings.Contains(got, "dropped") {
		t.Errorf("dropped diagnostic must not render:\n%s", got)
	}
	if !strings.Contains(got, "1 more diagnostics not shown") {
		t.Errorf("missing truncation notice:\n%s", got)
	}
}

func TestHeadline(t *testing.T) {
	var sb strings.Builder
	Headline(&sb, diag.SevError, "missing.rn: file not found", PrettyOpts{})
	want := "error: missing.rn: file not found\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestSeverityColoring(t *testing.T) {
	// fatih/color flips NoColor on when stdout is redirected. opts.Color is
	// resolved against the actual output stream and must win regardless.
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	files := source.NewFileSet()
	id := files.AddVirtual("bad.rn", []byte("x\n"))

	var sb strings.Builder
	Pretty(&sb, []diag.Diagnostic{diag.NewError(source.Span{File: id}, "boom")}, files, PrettyOpts{Color: true})
	if !strings.Contains(sb.String(), "\x1b[") {
		t.Errorf("expected ANSI escapes in colored output, got %q", sb.String())
	}

	sb.Reset()
	Pretty(&sb, []diag.Diagnostic{diag.NewError(source.Span{File: id}, "boom")}, files, PrettyOpts{Color: false})
	if strings.Contains(sb.String(), "\x1b[") {
		t.Errorf("unexpected ANSI escapes in plain output, got %q", sb.String())
	}
}

func TestJSONOutput(t *testing.T) {
	files := source.NewFileSet()
	id := files.AddVirtual("bad.rn", []byte("let x = 1\nlet y = 2\nbad\n"))
	span := spanOf(t, files, id, "bad")

	items := []diag.Diagnostic{
		diag.NewError(span, "unexpected token").WithNote(source.Span{File: id}, "script entry here"),
		diag.NewWarning(source.Span{File: id}, "style nit"),
	}

	var sb strings.Builder
	if err := JSON(&sb, items, files, JSONOpts{IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded []struct {
		Path     string `json:"path"`
		Line     uint32 `json:"line"`
		Col      uint32 `json:"col"`
		Severity string `json:"severity"`
		Message  string `json:"message"`
		Notes    []struct {
			Message string `json:"message"`
		} `json:"notes"`
	}
	if err := json.Unmarshal([]byte(sb.String()), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, sb.String())
	}
	if len(decoded) != 2 {
		t.Fatalf("len = %d, want 2", len(decoded))
	}
	if decoded[0].Path != "bad.rn" || decoded[0].Line != 3 || decoded[0].Col != 1 {
		t.Errorf("location = %s:%d:%d, want bad.rn:3:1", decoded[0].Path, decoded[0].Line, decoded[0].Col)
	}
	if decoded[0].Severity != "error" || decoded[1].Severity != "warning" {
		t.Errorf("severities = %q, %q", decoded[0].Severity, decoded[1].Severity)
	}
	if len(decoded[0].Notes) != 1 || decoded[0].Notes[0].Message != "script entry here" {
		t.Errorf("notes = %+v", decoded[0].Notes)
	}
}
