package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rune/internal/diag"
	"rune/internal/diagfmt"
	"rune/internal/engine"
	"rune/internal/pipeline"
	"rune/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.rn|directory>",
	Short: "Compile rune scripts without executing them",
	Long:  `Run the compile stage on a .rn file, or on every .rn file under a directory, and report diagnostics`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().String("engine", "", "engine to check with (default: the only linked engine)")
	checkCmd.Flags().Bool("strict", false, "treat warnings as errors")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory checking (0=auto)")
}

type checkResult struct {
	path    string
	loadErr error
	bag     *diag.Bag
}

// checkOptions carries the resolved flag values into the testable core.
type checkOptions struct {
	engineName     string
	format         string
	strict         bool
	jobs           int
	maxDiagnostics int
	pretty         diagfmt.PrettyOpts
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	engineName, err := cmd.Flags().GetString("engine")
	if err != nil {
		return fmt.Errorf("failed to get engine flag: %w", err)
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return fmt.Errorf("failed to get strict flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	code := checkPaths(cmd.Context(), args[0], checkOptions{
		engineName:     engineName,
		format:         format,
		strict:         strict,
		jobs:           jobs,
		maxDiagnostics: maxDiagnostics,
		pretty: diagfmt.PrettyOpts{
			Color:   colorEnabled(cmd, os.Stderr),
			Preview: true,
		},
	}, os.Stdout, os.Stderr)
	if code != pipeline.ExitSuccess {
		os.Exit(int(code))
	}
	return nil
}

// checkPaths runs the compile stage on a file or on every script under a
// directory and writes the report. Fatal diagnostics (and compile-stage
// infrastructure failures like a missing engine) yield ExitCompile; files
// that could not be loaded yield ExitLoad, with fatal taking precedence.
func checkPaths(ctx context.Context, target string, opts checkOptions, stdout, stderr io.Writer) pipeline.ExitCode {
	eng, err := engine.Open(opts.engineName)
	if err != nil {
		diagfmt.Headline(stderr, diag.SevError, err.Error(), opts.pretty)
		return pipeline.ExitCompile
	}

	paths, err := collectScripts(target)
	if err != nil {
		diagfmt.Headline(stderr, diag.SevError, err.Error(), opts.pretty)
		return pipeline.ExitLoad
	}

	jobs := opts.jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	// Loading is sequential so the FileSet stays single-writer; compiles
	// then run in parallel with read-only access to it.
	files := source.NewFileSet()
	results := make([]checkResult, len(paths))
	ids := make([]source.FileID, len(paths))
	for i, p := range paths {
		results[i].path = p
		ids[i], results[i].loadErr = files.Load(p)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range paths {
		if results[i].loadErr != nil {
			continue
		}
		g.Go(func() error {
			bag := diag.NewBag(opts.maxDiagnostics)
			_, diags, compileErr := eng.Compiler().Compile(gctx, files.Get(ids[i]))
			bag.AddAll(diags)
			if compileErr != nil {
				bag.Add(diag.NewError(source.Span{File: ids[i]},
					fmt.Sprintf("compiler failure: %v", compileErr)))
			}
			results[i].bag = bag
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		diagfmt.Headline(stderr, diag.SevError, err.Error(), opts.pretty)
		return pipeline.ExitCompile
	}

	anyLoadFailed := false
	anyFatal := false
	var all []diag.Diagnostic
	for _, res := range results {
		if res.loadErr != nil {
			anyLoadFailed = true
			diagfmt.Headline(stderr, diag.SevError, res.loadErr.Error(), opts.pretty)
			continue
		}
		if res.bag.HasErrors() || (opts.strict && res.bag.HasWarnings()) {
			anyFatal = true
		}
		switch opts.format {
		case "json":
			all = append(all, res.bag.Items()...)
		default:
			diagfmt.PrettyBag(stderr, res.bag, files, opts.pretty)
		}
	}
	if opts.format == "json" {
		if err := diagfmt.JSON(stdout, all, files, diagfmt.JSONOpts{IncludeNotes: true}); err != nil {
			diagfmt.Headline(stderr, diag.SevError, fmt.Sprintf("failed to write json: %v", err), opts.pretty)
			return pipeline.ExitLoad
		}
	}

	switch {
	case anyFatal:
		return pipeline.ExitCompile
	case anyLoadFailed:
		return pipeline.ExitLoad
	}
	return pipeline.ExitSuccess
}

// collectScripts expands a directory into its sorted *.rn files; a plain file
// path is returned as-is.
func collectScripts(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		// Let the loader classify missing/unreadable paths.
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".rn") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .rn files found under %q", root)
	}
	sort.Strings(paths)
	return paths, nil
}
