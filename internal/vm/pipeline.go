package vm

import (
	"fmt"

	"github.com/dkestrel/r2asm/internal/decoder"
	"github.com/dkestrel/r2asm/internal/ir"
)

// VM drives the fetch/decode/execute pipeline over a CPU and Memory, with
// the two buffered slots described in spec.md §4.G.
type VM struct {
	CPU    *CPU
	Memory *Memory

	MaxCycles uint64
	Halted    bool

	fetched    uint32
	hasFetched bool
	decoded    ir.Instruction
	hasDecoded bool
}

// New builds a VM ready to run from cpu's current PC.
func New(cpu *CPU, mem *Memory, maxCycles uint64) *VM {
	return &VM{CPU: cpu, Memory: mem, MaxCycles: maxCycles}
}

// FetchedWord returns the raw word sitting in the fetch slot, if any.
func (v *VM) FetchedWord() (uint32, bool) {
	return v.fetched, v.hasFetched
}

// Decoded returns the instruction sitting in the decode slot, if any.
func (v *VM) Decoded() (ir.Instruction, bool) {
	return v.decoded, v.hasDecoded
}

// Run drives the pipeline until a ZER instruction executes or MaxCycles
// instructions have retired.
func (v *VM) Run() error {
	for !v.Halted {
		if v.MaxCycles != 0 && v.CPU.Cycles >= v.MaxCycles {
			return fmt.Errorf("vm: exceeded max cycle count %d", v.MaxCycles)
		}
		if err := v.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the pipeline by one stage-cycle: execute the decoded
// slot (if any), decode the fetched slot into it (if not invalidated by
// a branch this cycle), then fetch the next word and advance PC.
func (v *VM) Step() error {
	if v.hasDecoded {
		inst := v.decoded
		v.hasDecoded = false

		flushed, halt, err := v.execute(inst)
		if err != nil {
			return err
		}
		v.CPU.Cycles++

		if halt {
			v.Halted = true
			return nil
		}
		if flushed {
			v.hasFetched = false
			return nil
		}
	}

	if v.hasFetched {
		v.decoded = decoder.Decode(v.fetched)
		v.hasDecoded = true
		v.hasFetched = false
	}

	// A ZER instruction just decoded is about to halt execution next cycle;
	// fetching past it would advance PC beyond the halting instruction for
	// no instruction that will ever execute.
	if v.hasDecoded && v.decoded.Type == ir.ZER {
		return nil
	}

	word, err := v.Memory.ReadWord(v.CPU.PC())
	if err != nil {
		return err
	}
	v.fetched = word
	v.hasFetched = true
	v.CPU.SetPC(v.CPU.PC() + 4)

	return nil
}
