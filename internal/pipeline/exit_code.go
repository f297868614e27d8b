package pipeline

// ExitCode is the process exit status derived from the terminal pipeline
// state. The mapping is fixed; nothing else in the program picks exit codes.
type ExitCode int

const (
	// ExitSuccess: script executed and produced a value or no value.
	ExitSuccess ExitCode = 0
	// ExitLoad: the source file could not be loaded.
	ExitLoad ExitCode = 1
	// ExitCompile: compilation produced error-severity diagnostics.
	ExitCompile ExitCode = 2
	// ExitRuntime: execution raised a runtime fault.
	ExitRuntime ExitCode = 3
)

// State names the orchestrator's position in the run. The three Reporting*
// states plus StateSuccess are terminal.
type State uint8

const (
	StateLoading State = iota
	StateCompiling
	StateExecuting
	StateSuccess
	StateLoadError
	StateCompileError
	StateFault
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateCompiling:
		return "compiling"
	case StateExecuting:
		return "executing"
	case StateSuccess:
		return "success"
	case StateLoadError:
		return "load-error"
	case StateCompileError:
		return "compile-error"
	case StateFault:
		return "fault"
	}
	return "unknown"
}

// Terminal reports whether the pipeline stops in this state.
func (s State) Terminal() bool {
	switch s {
	case StateSuccess, StateLoadError, StateCompileError, StateFault:
		return true
	}
	return false
}

// Code maps a terminal state to its exit code.
func (s State) Code() ExitCode {
	switch s {
	case StateSuccess:
		return ExitSuccess
	case StateLoadError:
		return ExitLoad
	case StateCompileError:
		return ExitCompile
	case StateFault:
		return ExitRuntime
	}
	return ExitSuccess
}
