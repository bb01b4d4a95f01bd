package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rhine/internal/version"
)

// newRootCmd assembles the command tree. Each call returns an independent
// tree so tests can run commands in isolation.
func newRootCmd() *cobra.Command {
	var cleanup func()

	root := &cobra.Command{
		Use:           "rhine",
		Short:         "Control-flow graph IR toolkit",
		Long:          `rhine builds, validates and dumps control-flow graph IR described by TOML graph scripts`,
		Version:       version.Current(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(s.logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			stopProfiling, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			done, err := setupTracing(cmd, s, logger)
			if err != nil {
				stopProfiling()
				return err
			}
			cleanup = func() {
				done()
				stopProfiling()
				_ = logger.Sync()
			}
			applyColor(s.color)
			cmd.SetContext(withSettings(cmd.Context(), s))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cleanup != nil {
				cleanup()
				cleanup = nil
			}
		},
	}

	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show per-stage timing information")
	flags.String("trace", "", "trace output file (\"-\" for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace sink (stream|log|both)")
	flags.String("trace-format", "auto", "trace stream format (auto|text|ndjson)")
	flags.String("log-level", "warn", "log level (debug|info|warn|error)")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime execution trace to this file")
	flags.String("config", "", "path to rhine.toml (default: search upwards from the working directory)")

	root.AddCommand(
		newBuildCmd(),
		newLoadCmd(),
		newDemoCmd(),
		newOpcodesCmd(),
		newVersionCmd(),
	)
	return root
}

// run executes root. Cobra skips post-run hooks when a command fails, so
// the cleanup is repeated here to flush traces and profiles on that path.
func run(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if root.PersistentPostRun != nil {
		root.PersistentPostRun(root, nil)
	}
	return err
}

func main() {
	root := newRootCmd()
	if err := run(context.Background(), root); err != nil {
		root.PrintErrln("error:", err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
