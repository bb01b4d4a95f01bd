package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rhine/internal/pipeline"
	"rhine/internal/ui"
)

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [scripts...]",
		Short: "Construct, validate and emit graph scripts",
		Long: `Build every graph script given on the command line, or the [build].scripts
of the nearest rhine.toml when none are given.`,
		RunE: runBuild,
	}
	cmd.Flags().Int("jobs", 0, "number of scripts built in parallel (0 = GOMAXPROCS)")
	cmd.Flags().String("emit", "text", "output kind (text|json|msgpack)")
	cmd.Flags().String("out-dir", "", "directory for emitted files (required for json|msgpack)")
	cmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	cmd.Flags().Bool("parallel-edges", false, "allow duplicate successor edges (split through a fresh block)")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	s := settingsFrom(cmd.Context())
	req, err := buildRequest(cmd, s, args)
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	var results []pipeline.Result
	var runErr error
	if !s.quiet && shouldUseTUI(mode, req.Emit == pipeline.EmitText && req.OutDir == "") {
		results, runErr = runBuildWithUI(cmd.Context(), "rhine build", req)
	} else {
		if !s.quiet {
			req.Progress = ui.NewPlainSink(cmd.ErrOrStderr())
		}
		results, runErr = pipeline.Run(cmd.Context(), req)
	}
	if results == nil && runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		switch {
		case res.Listing != "":
			if len(results) > 1 {
				fmt.Fprintf(out, "== %s ==\n", res.Name)
			}
			io.WriteString(out, res.Listing)
		case res.Output != "" && !s.quiet:
			fmt.Fprintf(out, "wrote %s\n", res.Output)
		}
		if s.timings {
			printStageTimings(cmd.ErrOrStderr(), res.Name, res.Timings)
		}
	}
	return runErr
}

func buildRequest(cmd *cobra.Command, s *settings, args []string) (*pipeline.Request, error) {
	flags := cmd.Flags()
	req := &pipeline.Request{Files: args, Color: colorEnabled(s)}

	if p := s.project; p != nil {
		b := p.Config.Build
		req.Jobs = b.Jobs
		req.Emit = pipeline.Emit(b.Emit)
		req.OutDir = p.ResolveOutDir()
		req.ParallelEdges = b.ParallelEdges
		if len(req.Files) == 0 {
			scripts, err := p.Scripts()
			if err != nil {
				return nil, err
			}
			req.Files = scripts
		}
	}
	if len(req.Files) == 0 {
		return nil, errors.New("no graph scripts given and no [build].scripts configured")
	}

	var err error
	if flags.Changed("jobs") || req.Jobs == 0 {
		if req.Jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("emit") || req.Emit == "" {
		emit, err := flags.GetString("emit")
		if err != nil {
			return nil, err
		}
		req.Emit = pipeline.Emit(emit)
	}
	if req.Emit, err = pipeline.ParseEmit(string(req.Emit)); err != nil {
		return nil, err
	}
	if flags.Changed("out-dir") {
		if req.OutDir, err = flags.GetString("out-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("parallel-edges") {
		if req.ParallelEdges, err = flags.GetBool("parallel-edges"); err != nil {
			return nil, err
		}
	}
	return req, nil
}
