package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rhine/internal/pipeline"
	"rhine/internal/project"
)

// settings merges rhine.toml with the persistent flags. Explicit flags win.
type settings struct {
	color       string
	quiet       bool
	timings     bool
	traceOutput string
	traceLevel  string
	traceMode   string
	traceFormat string
	logLevel    string
	project     *project.Project
}

type settingsKey struct{}

func withSettings(ctx context.Context, s *settings) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, settingsKey{}, s)
}

func settingsFrom(ctx context.Context) *settings {
	if ctx != nil {
		if s, ok := ctx.Value(settingsKey{}).(*settings); ok {
			return s
		}
	}
	return &settings{color: "auto", traceLevel: "off", logLevel: "warn"}
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Flags()
	s := &settings{}
	var err error
	if s.color, err = flags.GetString("color"); err != nil {
		return nil, err
	}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, err
	}
	if s.traceOutput, err = flags.GetString("trace"); err != nil {
		return nil, err
	}
	if s.traceLevel, err = flags.GetString("trace-level"); err != nil {
		return nil, err
	}
	if s.traceMode, err = flags.GetString("trace-mode"); err != nil {
		return nil, err
	}
	if s.traceFormat, err = flags.GetString("trace-format"); err != nil {
		return nil, err
	}
	if s.logLevel, err = flags.GetString("log-level"); err != nil {
		return nil, err
	}
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	if s.project, err = findProject(configPath); err != nil {
		return nil, err
	}
	if s.project != nil {
		cfg := s.project.Config
		override := func(dst *string, flag, value string) {
			if value = strings.TrimSpace(value); value != "" && !flags.Changed(flag) {
				*dst = value
			}
		}
		override(&s.color, "color", cfg.Output.Color)
		override(&s.traceLevel, "trace-level", cfg.Trace.Level)
		override(&s.traceOutput, "trace", cfg.Trace.Output)
		override(&s.traceFormat, "trace-format", cfg.Trace.Format)
	}

	switch s.color {
	case "auto", "on", "off":
	default:
		return nil, fmt.Errorf("invalid --color value %q (expected auto|on|off)", s.color)
	}
	return s, nil
}

func findProject(configPath string) (*project.Project, error) {
	if configPath != "" {
		cfg, err := project.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return nil, err
		}
		return &project.Project{Path: abs, Root: filepath.Dir(abs), Config: cfg}, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	p, _, err := project.Load(wd)
	return p, err
}

// applyColor switches fatih/color globally. auto keeps the library's own
// terminal detection.
func applyColor(mode string) {
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
}

func colorEnabled(s *settings) bool {
	switch s.color {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// newLogger builds the console logger used by the pipeline and the log
// trace sink.
func newLogger(level string, out io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(out), lvl)
	logger := zap.New(core)
	pipeline.SetLogger(logger)
	return logger, nil
}
