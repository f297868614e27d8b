package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rune/internal/diag"
	"rune/internal/diagfmt"
	"rune/internal/engine"
	"rune/internal/pipeline"
	"rune/internal/unitcache"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [file.rn] [args...]",
	Short: "Compile and execute a rune script",
	Long: `Compile a .rn source file and execute it. Arguments after the script
path are forwarded verbatim to the script. Without a script path the entry
point from rune.toml is used.`,
	Args: cobra.ArbitraryArgs,
	RunE: runExecution,
}

func init() {
	runCmd.Flags().String("engine", "", "engine to run with (default: the only linked engine)")
	runCmd.Flags().Bool("strict", false, "treat compile warnings as errors")
	runCmd.Flags().Uint64("fuel", 0, "instruction budget for the VM (0 = unlimited)")
	runCmd.Flags().Bool("trace", false, "write the VM execution trace to stderr")
	runCmd.Flags().Bool("no-cache", false, "skip the compiled unit cache")
	// Flags stop at the first positional so the script keeps its own.
	runCmd.Flags().SetInterspersed(false)
}

func runExecution(cmd *cobra.Command, args []string) error {
	engineName, err := cmd.Flags().GetString("engine")
	if err != nil {
		return fmt.Errorf("failed to get engine flag: %w", err)
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return fmt.Errorf("failed to get strict flag: %w", err)
	}
	fuel, err := cmd.Flags().GetUint64("fuel")
	if err != nil {
		return fmt.Errorf("failed to get fuel flag: %w", err)
	}
	traceEnabled, err := cmd.Flags().GetBool("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	// The manifest supplies defaults; explicitly set flags win.
	printResult := !quiet
	scriptPath := ""
	var scriptArgs []string
	if len(args) > 0 {
		scriptPath = args[0]
		scriptArgs = args[1:]
	}
	if manifest, ok, manErr := loadProjectManifest("."); manErr != nil {
		return manErr
	} else if ok {
		if scriptPath == "" && manifest.Config.Run.Main != "" {
			scriptPath = filepath.Join(manifest.Root, manifest.Config.Run.Main)
		}
		if engineName == "" {
			engineName = manifest.Config.Run.Engine
		}
		if !cmd.Flags().Changed("strict") {
			strict = manifest.Config.Run.Strict
		}
		if !cmd.Flags().Changed("fuel") {
			fuel = manifest.Config.Run.Fuel
		}
		if !quiet && manifest.Config.Run.PrintResult != nil {
			printResult = *manifest.Config.Run.PrintResult
		}
	}
	if scriptPath == "" {
		return fmt.Errorf("no script to run: pass a file or set run.main in rune.toml")
	}

	// No usable engine is a compile-stage infrastructure failure and maps
	// to the compile exit code, not the generic CLI failure.
	eng, err := engine.Open(engineName)
	if err != nil {
		diagfmt.Headline(os.Stderr, diag.SevError, err.Error(),
			diagfmt.PrettyOpts{Color: colorEnabled(cmd, os.Stderr)})
		os.Exit(int(pipeline.ExitCompile))
	}

	var cache *unitcache.Cache
	if !noCache {
		// Best effort: a broken cache directory must not stop the run.
		cache, _ = unitcache.Open("rune")
	}

	var trace io.Writer
	if traceEnabled {
		trace = os.Stderr
	}

	runner := pipeline.New(pipeline.Options{
		Engine:         eng,
		Strict:         strict,
		Fuel:           fuel,
		Trace:          trace,
		MaxDiagnostics: maxDiagnostics,
		Cache:          cache,
		Format: diagfmt.PrettyOpts{
			Color:   colorEnabled(cmd, os.Stderr),
			Preview: true,
		},
	})

	report := runner.Run(cmd.Context(), scriptPath, scriptArgs)

	if report.Stderr != "" {
		fmt.Fprint(os.Stderr, report.Stderr)
	}
	if report.Code == pipeline.ExitSuccess && report.HasValue && printResult {
		fmt.Fprintln(os.Stdout, report.Value)
	}
	if report.Code != pipeline.ExitSuccess {
		os.Exit(int(report.Code))
	}
	return nil
}
