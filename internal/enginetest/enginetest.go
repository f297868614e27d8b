// Package enginetest provides a scriptable engine for exercising the
// pipeline without a real language implementation. Each stage is a function
// field, and call counters let tests assert which stages actually ran.
package enginetest

import (
	"context"
	"errors"

	"rune/internal/diag"
	"rune/internal/engine"
	"rune/internal/source"
)

// Engine implements engine.Engine with pluggable stage functions.
type Engine struct {
	EngineName string

	CompileFn func(ctx context.Context, file *source.File) (engine.Unit, []diag.Diagnostic, error)
	RunFn     func(ctx context.Context, unit engine.Unit, opts engine.RunOptions) (engine.Outcome, error)

	CompileCalls int
	RunCalls     int
	LastRunOpts  engine.RunOptions
}

func (e *Engine) Name() string {
	if e.EngineName == "" {
		return "test"
	}
	return e.EngineName
}

func (e *Engine) Compiler() engine.Compiler { return compilerShim{e} }
func (e *Engine) Machine() engine.Machine   { return machineShim{e} }

type compilerShim struct{ e *Engine }

func (c compilerShim) Compile(ctx context.Context, file *source.File) (engine.Unit, []diag.Diagnostic, error) {
	c.e.CompileCalls++
	if c.e.CompileFn == nil {
		return file.Content, nil, nil
	}
	return c.e.CompileFn(ctx, file)
}

type machineShim struct{ e *Engine }

func (m machineShim) Run(ctx context.Context, unit engine.Unit, opts engine.RunOptions) (engine.Outcome, error) {
	m.e.RunCalls++
	m.e.LastRunOpts = opts
	if m.e.RunFn == nil {
		return engine.Ok(nil), nil
	}
	return m.e.RunFn(ctx, unit, opts)
}

// Static builds an engine that compiles anything and always yields value.
func Static(name string, value engine.Value) *Engine {
	return &Engine{
		EngineName: name,
		RunFn: func(context.Context, engine.Unit, engine.RunOptions) (engine.Outcome, error) {
			return engine.Ok(value), nil
		},
	}
}

// FailCompile builds an engine whose compile stage reports the given
// diagnostics and no unit.
func FailCompile(name string, diags ...diag.Diagnostic) *Engine {
	return &Engine{
		EngineName: name,
		CompileFn: func(context.Context, *source.File) (engine.Unit, []diag.Diagnostic, error) {
			return nil, diags, nil
		},
	}
}

// Faulting builds an engine whose run stage always raises fault.
func Faulting(name string, fault *engine.Fault) *Engine {
	return &Engine{
		EngineName: name,
		RunFn: func(context.Context, engine.Unit, engine.RunOptions) (engine.Outcome, error) {
			return engine.Faulted(fault), nil
		},
	}
}

// Codec wraps an Engine with byte-slice unit serialization so cache paths
// can be exercised. Units must be []byte.
type Codec struct {
	*Engine
	EncodeCalls int
	DecodeCalls int
}

func (c *Codec) EncodeUnit(unit engine.Unit) ([]byte, error) {
	c.EncodeCalls++
	data, ok := unit.([]byte)
	if !ok {
		return nil, errors.New("enginetest: unit is not []byte")
	}
	return data, nil
}

func (c *Codec) DecodeUnit(data []byte) (engine.Unit, error) {
	c.DecodeCalls++
	return data, nil
}
