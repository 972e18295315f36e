// Package main provides the entry point for the hintscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for hintscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hintscan",
		Short: "Performance hint analyzer for browser trace files",
		Long: `Hintscan analyzes browser performance traces and emits advisory hints.
It inspects network and page event records for caching problems, missing
compression, oversized payloads, layout thrashing, and slow events.

Analysis results can be printed, written to files, streamed as raw hint
envelopes, and saved to a local database for historical comparison.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
