// Package engine declares the capability contracts the pipeline drives:
// a compiler that turns source text into an opaque unit, and a machine that
// executes such a unit. The language itself (grammar, semantics, instruction
// set) lives behind these interfaces; concrete engines register themselves
// with Register, usually from an init function in their own package.
package engine

import (
	"context"
	"io"

	"rune/internal/diag"
	"rune/internal/source"
)

// Unit is the opaque executable artifact produced by a Compiler. A unit is
// single-use: the pipeline hands it to a Machine exactly once.
type Unit any

// Value is the terminal value of a script run. nil means "no value".
type Value any

// Compiler turns one source file into a Unit.
//
// Diagnostics are returned in detection order and may accompany either
// result: a successful compile can still carry warnings. The error return is
// for infrastructure failures only (the capability itself broke); language
// problems must come back as error-severity diagnostics instead.
type Compiler interface {
	Compile(ctx context.Context, file *source.File) (Unit, []diag.Diagnostic, error)
}

// RunOptions carries the per-run knobs a Machine understands.
type RunOptions struct {
	// Args is the script's argument list, forwarded verbatim.
	Args []string
	// Fuel is an instruction budget enforced by the machine; 0 means
	// unlimited. Exhausting it surfaces as a Fault.
	Fuel uint64
	// Trace, when non-nil, receives the machine's execution trace.
	Trace io.Writer
}

// Machine executes a compiled unit.
//
// As with Compiler, the error return is reserved for infrastructure
// failures; a script that goes wrong at runtime yields an Outcome with a
// non-nil Fault.
type Machine interface {
	Run(ctx context.Context, unit Unit, opts RunOptions) (Outcome, error)
}

// Engine bundles the two capabilities for one language implementation.
type Engine interface {
	Name() string
	Compiler() Compiler
	Machine() Machine
}

// UnitCodec is an optional extension: engines whose units survive
// serialization implement it so compiled units can be cached on disk.
// Engines without it are silently excluded from caching.
type UnitCodec interface {
	EncodeUnit(unit Unit) ([]byte, error)
	DecodeUnit(data []byte) (Unit, error)
}
