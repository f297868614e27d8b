package engine

import (
	"fmt"

	"rune/internal/source"
)

// Frame is one entry of a fault backtrace: a symbolic function name plus an
// optional source span.
type Frame struct {
	Function string
	Span     source.Span
}

// Fault describes a runtime failure that aborted execution. Frames are
// ordered innermost first, i.e. Frames[0] is the frame that faulted.
type Fault struct {
	Message string
	Span    source.Span
	Frames  []Frame
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("runtime fault: %s", f.Message)
}

// Outcome is the tagged result of executing a unit: exactly one of Value or
// Fault is meaningful. A nil Fault marks success, and a nil Value then means
// the script produced no value.
type Outcome struct {
	Value Value
	Fault *Fault
}

// Ok builds a successful outcome.
func Ok(v Value) Outcome {
	return Outcome{Value: v}
}

// Faulted builds a failed outcome.
func Faulted(f *Fault) Outcome {
	return Outcome{Fault: f}
}
