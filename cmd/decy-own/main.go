package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/paiml/decy-sub003/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "decy-own",
	Short: "Ownership and lifetime inference for C functions",
	Long: `decy-own infers how raw C pointers are used (owned, borrowed, array views)
and shows the safe Rust signature each function would get.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errFindings makes the process exit with status 1 without printing an error.
var errFindings = errors.New("findings reported")

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("trace", "", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-output", "", "trace output file (default: stderr, *.ndjson for JSON)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")
}

func main() {
	rootCmd.Version = version.Version
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFindings) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
