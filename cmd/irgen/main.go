// Command irgen renders the opcode catalog into Go source.
//
//	irgen -catalog instructions.toml -out opcode_gen.go -package ir
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	catalogPath string
	outPath     string
	packageName string
)

var rootCmd = &cobra.Command{
	Use:          "irgen",
	Short:        "Generate the opcode enumeration and Graph factories from an instruction catalog",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(catalogPath)
		if err != nil {
			return err
		}
		src, err := render(cat, packageName, filepath.Base(catalogPath))
		if err != nil {
			return err
		}
		if outPath == "" || outPath == "-" {
			_, err = cmd.OutOrStdout().Write(src)
			return err
		}
		if err := os.WriteFile(outPath, src, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&catalogPath, "catalog", "instructions.toml", "instruction catalog (TOML)")
	rootCmd.Flags().StringVar(&outPath, "out", "opcode_gen.go", "output file (- for stdout)")
	rootCmd.Flags().StringVar(&packageName, "package", "ir", "package clause of the generated file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
