package enginetest

import (
	"context"
	"testing"

	"rune/internal/diag"
	"rune/internal/engine"
	"rune/internal/source"
)

func TestDefaultsCompileAndRun(t *testing.T) {
	eng := &Engine{EngineName: "t"}
	files := source.NewFileSet()
	id := files.AddVirtual("ok.rn", []byte("2\n"))

	unit, diags, err := eng.Compiler().Compile(context.Background(), files.Get(id))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("diags = %v, want none", diags)
	}
	if string(unit.([]byte)) != "2\n" {
		t.Errorf("default unit should be the file content")
	}

	outcome, err := eng.Machine().Run(context.Background(), unit, engine.RunOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Fault != nil || outcome.Value != nil {
		t.Errorf("outcome = %+v, want empty success", outcome)
	}
	if eng.CompileCalls != 1 || eng.RunCalls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", eng.CompileCalls, eng.RunCalls)
	}
}

func TestFailCompileReportsDiagnostics(t *testing.T) {
	eng := FailCompile("t", diag.NewError(source.Span{}, "boom"))
	files := source.NewFileSet()
	id := files.AddVirtual("bad.rn", []byte("x\n"))

	_, diags, err := eng.Compiler().Compile(context.Background(), files.Get(id))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(diags) != 1 || diags[0].Message != "boom" {
		t.Errorf("diags = %+v", diags)
	}
}

func TestCodecRejectsForeignUnits(t *testing.T) {
	codec := &Codec{Engine: &Engine{EngineName: "t"}}
	if _, err := codec.EncodeUnit(42); err == nil {
		t.Error("expected an error for a non-[]byte unit")
	}
	data, err := codec.EncodeUnit([]byte{1, 2})
	if err != nil {
		t.Fatalf("EncodeUnit: %v", err)
	}
	unit, err := codec.DecodeUnit(data)
	if err != nil {
		t.Fatalf("DecodeUnit: %v", err)
	}
	if string(unit.([]byte)) != string(data) {
		t.Errorf("round trip mismatch")
	}
}
