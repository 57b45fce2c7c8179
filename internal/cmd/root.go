// Package cmd wires Raygun's single command: resolve flags, bootstrap the
// timeline store, debug sink, HTTP ingress, and terminal UI, and run until
// the user quits or the process is signaled.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yetidevworks/raygun/internal/exitcode"
)

var (
	bindFlag      string
	debugDumpFlag string
)

var rootCmd = &cobra.Command{
	Use:   "raygun",
	Short: "Raygun ingests debug ray payloads and renders them as a live terminal timeline.",
	Long: `Raygun listens for debug payloads sent by the ray protocol (the
wire format used by the Spatie Ray client libraries) and renders them as a
live, navigable terminal timeline with a structured detail pane.`,
	RunE:         runRoot,
	SilenceUsage: true,
}

// Execute runs the root command and returns a process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return exitcode.Code(err)
	}
	return exitcode.Success
}

func init() {
	rootCmd.Flags().StringVar(&bindFlag, "bind", "", "address to listen on (env RAYGUN_BIND, default 0.0.0.0:23517)")
	rootCmd.Flags().StringVar(&debugDumpFlag, "debug-dump", "", "append accepted requests to this file (env RAYGUN_DEBUG_DUMP)")
}
