package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rhine/internal/trace"
)

// setupTracing builds the tracer described by s and attaches it to the
// command context. The returned cleanup flushes and closes it.
func setupTracing(cmd *cobra.Command, s *settings, logger *zap.Logger) (func(), error) {
	level, err := trace.ParseLevel(s.traceLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(s.traceMode)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(s.traceFormat)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: s.traceOutput,
		Output:     streamOutput(cmd, s.traceOutput),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	return func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}, nil
}

// streamOutput routes stderr traces through the command's writer so tests
// can capture them. File outputs are opened by the tracer.
func streamOutput(cmd *cobra.Command, path string) io.Writer {
	if path == "" || path == "-" {
		return cmd.ErrOrStderr()
	}
	return nil
}
