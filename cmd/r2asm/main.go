// Command r2asm assembles source text into the flat little-endian
// object-code format described in spec.md §6.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkestrel/r2asm/internal/assemble"
	"github.com/dkestrel/r2asm/internal/firstpass"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "r2asm",
		Short: "Two-pass assembler for the reduced ARM2-like instruction set",
	}

	assembleCmd := &cobra.Command{
		Use:   "assemble <input.s> <output>",
		Short: "Tokenize, resolve symbols, and encode source into object code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssemble(args[0], args[1])
		},
	}

	rootCmd.AddCommand(assembleCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAssemble(inputPath, outputPath string) error {
	source, err := os.ReadFile(inputPath) // #nosec G304 -- user-provided source path
	if err != nil {
		return fmt.Errorf("r2asm: failed to read %s: %w", inputPath, err)
	}

	lines, table, err := firstpass.Tokenize(string(source))
	if err != nil {
		return err
	}

	program, err := assemble.Assemble(lines, table)
	if err != nil {
		return err
	}

	out := make([]byte, 0, len(program.Words)*4)
	for _, w := range program.Words {
		out = append(out, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}

	if err := os.WriteFile(outputPath, out, 0644); err != nil { // #nosec G306 -- object code is not sensitive
		return fmt.Errorf("r2asm: failed to write %s: %w", outputPath, err)
	}

	return nil
}
