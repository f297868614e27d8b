package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rune/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "rune",
	Short:        "Rune script runner",
	Long:         `Rune compiles .rn scripts with a pluggable engine and executes them on its VM`,
	SilenceUsage: true,
}

// A language build adds a blank import of its engine package to this file;
// the engine registers itself with internal/engine on init. This stock
// binary links none, so engine lookup fails until one is wired in.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether the file is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled resolves the persistent --color tri-state against the stream
// the output will actually go to.
func colorEnabled(cmd *cobra.Command, f *os.File) bool {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		mode = "auto"
	}
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}
