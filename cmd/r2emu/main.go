// Command r2emu loads and executes an assembled object-code file against
// the flat 17-register, 64KiB-memory machine described in spec.md §4.G/§4.H.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkestrel/r2asm/internal/inspector"
	"github.com/dkestrel/r2asm/internal/rconfig"
	"github.com/dkestrel/r2asm/internal/vm"
)

func main() {
	var inspect bool
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "r2emu",
		Short: "Emulator for the reduced ARM2-like instruction set",
	}

	emulateCmd := &cobra.Command{
		Use:   "emulate <binary>",
		Short: "Load and run an assembled object-code file to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmulate(args[0], inspect, verbose)
		},
	}
	emulateCmd.Flags().BoolVar(&inspect, "inspect", false, "open a read-only post-halt state viewer")
	emulateCmd.Flags().BoolVar(&verbose, "verbose", false, "print pipeline and cycle-count diagnostics")

	rootCmd.AddCommand(emulateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runEmulate(path string, inspect, verbose bool) error {
	cfg, err := rconfig.Load()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided binary path
	if err != nil {
		return fmt.Errorf("r2emu: failed to read %s: %w", path, err)
	}

	words, err := wordsFromBytes(data)
	if err != nil {
		return err
	}

	cpu := vm.NewCPU()
	cpu.SetPC(cfg.Execution.EntryAddress)
	mem := vm.NewMemory(!cfg.Execution.CompliantMode)
	if err := mem.LoadWords(words); err != nil {
		return err
	}

	machine := vm.New(cpu, mem, cfg.Execution.MaxCycles)
	if err := machine.Run(); err != nil {
		return err
	}

	for _, d := range mem.Diagnostics {
		fmt.Fprintln(os.Stderr, d)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "r2emu: halted after %d cycles\n", cpu.Cycles)

		fmt.Fprintln(os.Stderr, "\n--- System State ---")
		fmt.Fprint(os.Stderr, inspector.FormatRegistersBinary(cpu))
		fmt.Fprint(os.Stderr, inspector.FormatMemoryBinary(mem))

		decoded, decodedOK := machine.Decoded()
		fetched, fetchedOK := machine.FetchedWord()
		fmt.Fprint(os.Stderr, inspector.FormatDecodedInstruction(decoded, decodedOK))
		fmt.Fprint(os.Stderr, inspector.FormatFetchedInstruction(fetched, fetchedOK))
	}

	if inspect {
		return inspector.New().Show(cpu, mem)
	}

	fmt.Print(inspector.FormatRegisters(cpu))
	fmt.Print(inspector.FormatMemory(mem))
	return nil
}

func wordsFromBytes(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("r2emu: object file length %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		off := i * 4
		words[i] = uint32(data[off]) | uint32(data[off+1])<<8 | uint32(data[off+2])<<16 | uint32(data[off+3])<<24
	}
	return words, nil
}
