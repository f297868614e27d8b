// Package pipeline sequences one script run: load the source, compile it,
// execute the unit, and map whatever happened to a fixed exit code. Every
// failure is terminal for the invocation; nothing is retried.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"rune/internal/diag"
	"rune/internal/diagfmt"
	"rune/internal/engine"
	"rune/internal/source"
	"rune/internal/unitcache"
)

const defaultMaxDiagnostics = 100

// Options configures a Runner. Engine is the only required field.
type Options struct {
	Engine engine.Engine

	// Strict promotes compile warnings to a fatal compile failure.
	Strict bool
	// Fuel is forwarded verbatim to the machine; 0 means unlimited.
	Fuel uint64
	// Trace, when non-nil, receives the machine's execution trace.
	Trace io.Writer
	// MaxDiagnostics caps collected diagnostics; 0 picks the default.
	MaxDiagnostics int
	// Cache, when non-nil, is consulted for compiled units of engines
	// that implement engine.UnitCodec.
	Cache *unitcache.Cache
	// Format styles the text in Report.Stderr.
	Format diagfmt.PrettyOpts
}

// Report is the terminal result of one run. Stderr holds all formatted
// diagnostic and fault text; the caller decides where to write it.
type Report struct {
	State       State
	Code        ExitCode
	Stderr      string
	Value       engine.Value
	HasValue    bool
	Diagnostics *diag.Bag
	Files       *source.FileSet
}

// Runner drives the load -> compile -> execute sequence.
type Runner struct {
	opts Options
}

func New(opts Options) *Runner {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = defaultMaxDiagnostics
	}
	return &Runner{opts: opts}
}

// Run executes the script at path with the given argument list. It never
// writes to any stream itself and never calls os.Exit; everything the user
// should see is in the returned Report.
func (r *Runner) Run(ctx context.Context, path string, args []string) Report {
	files := source.NewFileSet()
	bag := diag.NewBag(r.opts.MaxDiagnostics)
	var stderr strings.Builder

	report := Report{
		State:       StateLoading,
		Diagnostics: bag,
		Files:       files,
	}
	fail := func(state State) Report {
		report.State = state
		report.Code = state.Code()
		report.Stderr = stderr.String()
		return report
	}

	// Loading.
	fileID, err := files.Load(path)
	if err != nil {
		diagfmt.Headline(&stderr, diag.SevError, err.Error(), r.opts.Format)
		return fail(StateLoadError)
	}
	file := files.Get(fileID)

	// Compiling.
	report.State = StateCompiling
	unit, compiled := r.cachedUnit(file)
	if !compiled {
		var diags []diag.Diagnostic
		unit, diags, err = r.opts.Engine.Compiler().Compile(ctx, file)
		bag.AddAll(diags)
		if err != nil {
			bag.Add(diag.NewError(source.Span{File: fileID}, fmt.Sprintf("compiler failure: %v", err)))
		}
	}

	fatal := bag.HasErrors() || (r.opts.Strict && bag.HasWarnings())
	if bag.Len() > 0 {
		diagfmt.PrettyBag(&stderr, bag, files, r.opts.Format)
	}
	if fatal {
		return fail(StateCompileError)
	}
	if !compiled && bag.Len() == 0 {
		// Only clean compiles are cached, so a later cache hit cannot
		// swallow warnings the user would otherwise see again.
		r.storeUnit(file, unit)
	}

	// Executing. The unit is single-use and consumed here.
	report.State = StateExecuting
	outcome, err := r.opts.Engine.Machine().Run(ctx, unit, engine.RunOptions{
		Args:  args,
		Fuel:  r.opts.Fuel,
		Trace: r.opts.Trace,
	})
	if err != nil {
		diagfmt.Headline(&stderr, diag.SevError, fmt.Sprintf("machine failure: %v", err), r.opts.Format)
		return fail(StateFault)
	}
	if outcome.Fault != nil {
		diagfmt.Fault(&stderr, outcome.Fault, files, r.opts.Format)
		return fail(StateFault)
	}

	report.State = StateSuccess
	report.Code = ExitSuccess
	report.Stderr = stderr.String()
	report.Value = outcome.Value
	report.HasValue = outcome.Value != nil
	return report
}

// cachedUnit tries to restore a previously compiled unit for this exact
// source. Any cache trouble is treated as a miss.
func (r *Runner) cachedUnit(file *source.File) (engine.Unit, bool) {
	if r.opts.Cache == nil {
		return nil, false
	}
	codec, ok := r.opts.Engine.(engine.UnitCodec)
	if !ok {
		return nil, false
	}
	key := unitcache.KeyFor(r.opts.Engine.Name(), file.Hash)
	var env unitcache.Envelope
	hit, err := r.opts.Cache.Get(key, &env)
	if err != nil || !hit {
		return nil, false
	}
	unit, err := codec.DecodeUnit(env.Unit)
	if err != nil {
		return nil, false
	}
	return unit, true
}

// storeUnit caches a freshly compiled unit, best effort.
func (r *Runner) storeUnit(file *source.File, unit engine.Unit) {
	if r.opts.Cache == nil {
		return
	}
	codec, ok := r.opts.Engine.(engine.UnitCodec)
	if !ok {
		return
	}
	data, err := codec.EncodeUnit(unit)
	if err != nil {
		return
	}
	key := unitcache.KeyFor(r.opts.Engine.Name(), file.Hash)
	_ = r.opts.Cache.Put(key, &unitcache.Envelope{
		Engine:     r.opts.Engine.Name(),
		SourceHash: file.Hash[:],
		Unit:       data,
	})
}
