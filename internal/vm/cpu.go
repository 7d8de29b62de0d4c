// Package vm implements the emulator half of the system: a flat 17-slot
// register file, a flat byte-addressed memory, and the fetch/decode/execute
// pipeline that drives them (spec.md §4.G, §4.H).
package vm

// Register file layout per spec.md §7: one flat array rather than the
// separate R[]/PC/CPSR fields of a conventional CPU struct.
const (
	NumRegisters = 17
	PCIndex      = 15
	CPSRIndex    = 16
)

// CPSR flag bit positions within Registers[CPSRIndex].
const (
	flagN = 31
	flagZ = 30
	flagC = 29
	flagV = 28
)

// CPU holds the register file and an executed-instruction counter.
type CPU struct {
	Registers [NumRegisters]uint32
	Cycles    uint64
}

// NewCPU returns a CPU with every register zeroed.
func NewCPU() *CPU {
	return &CPU{}
}

// Reset zeroes every register and the cycle counter.
func (c *CPU) Reset() {
	for i := range c.Registers {
		c.Registers[i] = 0
	}
	c.Cycles = 0
}

// PC returns the program counter (register 15).
func (c *CPU) PC() uint32 { return c.Registers[PCIndex] }

// SetPC writes the program counter.
func (c *CPU) SetPC(v uint32) { c.Registers[PCIndex] = v }

func (c *CPU) flag(pos uint32) bool {
	return (c.Registers[CPSRIndex]>>pos)&1 != 0
}

func (c *CPU) setFlag(pos uint32, v bool) {
	if v {
		c.Registers[CPSRIndex] |= 1 << pos
	} else {
		c.Registers[CPSRIndex] &^= 1 << pos
	}
}

// N, Z, C, V read the CPSR condition flags. V is exposed for
// completeness but this instruction subset never sets it, so it reads
// false unless something external wrote CPSR directly.
func (c *CPU) N() bool { return c.flag(flagN) }
func (c *CPU) Z() bool { return c.flag(flagZ) }
func (c *CPU) C() bool { return c.flag(flagC) }
func (c *CPU) V() bool { return c.flag(flagV) }

// SetN, SetZ, SetC write the corresponding CPSR flag.
func (c *CPU) SetN(v bool) { c.setFlag(flagN, v) }
func (c *CPU) SetZ(v bool) { c.setFlag(flagZ, v) }
func (c *CPU) SetC(v bool) { c.setFlag(flagC, v) }

// SetNZ writes N and Z from result in one call, the common case for
// every execute unit that updates flags.
func (c *CPU) SetNZ(result uint32) {
	c.SetN(result>>31 != 0)
	c.SetZ(result == 0)
}
