package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rhine/internal/ir"
)

func newOpcodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "opcodes",
		Short: "List the instruction catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, op := range ir.Opcodes() {
				fmt.Fprintf(out, "%-12s %s\n", op, op.Kind())
			}
			return nil
		},
	}
}
