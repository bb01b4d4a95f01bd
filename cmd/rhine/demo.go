package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rhine/internal/ir"
	"rhine/internal/irbuild"
	"rhine/internal/trace"
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Create a couple of instructions and dump them",
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}
	cmd.Flags().Bool("diamond", false, "also build and dump a diamond-shaped graph")
	return cmd
}

func runDemo(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	g := ir.NewGraph(ir.WithTracer(tracerFrom(cmd)))
	defer g.Release()

	add, err := g.CreateInstAdd()
	if err != nil {
		return err
	}
	if _, err := g.CreateInstNot(); err != nil {
		return err
	}
	add.Dump(out)

	diamond, err := cmd.Flags().GetBool("diamond")
	if err != nil || !diamond {
		return err
	}

	c := irbuild.New(cmd.Context())
	c.BasicBlock(2, 3, 4).Inst(1, ir.OpcodeCmp).Bool().ResetBlock()
	c.BasicBlock(3, 5).Inst(2, ir.OpcodeAdd).I32().ResetBlock()
	c.BasicBlock(4, 5).Inst(3, ir.OpcodeSub).I32().ResetBlock()
	c.NewBlock(5).Inst(4, ir.OpcodePhi).I32().Inst(5, ir.OpcodeReturnVoid)
	dg, err := c.Finalize()
	if err != nil {
		return err
	}
	defer dg.Release()

	fmt.Fprintln(out)
	return ir.Dump(out, dg, ir.DumpOptions{Color: colorEnabled(settingsFrom(cmd.Context()))})
}

func tracerFrom(cmd *cobra.Command) trace.Tracer {
	return trace.FromContext(cmd.Context())
}
