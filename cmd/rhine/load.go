package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rhine/internal/ir"
	"rhine/internal/irsnap"
)

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <snapshot>",
		Short: "Read a graph snapshot, validate it and print it",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoad,
	}
	cmd.Flags().String("format", "text", "output format (text|json)")
	cmd.Flags().String("out", "", "re-encode the snapshot to this path (.json or .rir)")
	return cmd
}

func runLoad(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	g, err := irsnap.ReadFile(args[0], ir.WithTracer(tracerFrom(cmd)))
	if err != nil {
		return err
	}
	defer g.Release()

	if outPath != "" {
		if err := irsnap.WriteFile(outPath, g); err != nil {
			return err
		}
		if !settingsFrom(cmd.Context()).quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
		}
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return ir.Dump(cmd.OutOrStdout(), g, ir.DumpOptions{Color: colorEnabled(settingsFrom(cmd.Context()))})
	case "json":
		data, err := g.Export()
		if err != nil {
			return err
		}
		return irsnap.Encode(cmd.OutOrStdout(), data, irsnap.FormatJSON)
	default:
		return fmt.Errorf("unsupported format %q (expected text|json)", format)
	}
}
