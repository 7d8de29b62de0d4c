package vm

import (
	"fmt"

	"github.com/dkestrel/r2asm/internal/bits"
	"github.com/dkestrel/r2asm/internal/ir"
)

// execute dispatches a decoded instruction to its execute unit
// (spec.md §4.H). It reports whether the pipeline was flushed by a
// taken branch and whether execution should halt.
func (v *VM) execute(inst ir.Instruction) (flushed bool, halt bool, err error) {
	if inst.Type == ir.ZER {
		return false, true, nil
	}

	if !EvaluateCondition(v.CPU, inst.Cond) {
		return false, false, nil
	}

	switch inst.Type {
	case ir.DPI:
		return false, false, v.executeDPI(inst)
	case ir.MUL:
		return false, false, v.executeMUL(inst)
	case ir.SDT:
		return false, false, v.executeSDT(inst)
	case ir.BRA:
		v.executeBRA(inst)
		return true, false, nil
	default:
		return false, false, fmt.Errorf("vm: cannot execute instruction of type %s", inst.Type)
	}
}

func (v *VM) operand2(inst ir.Instruction) (uint32, bool) {
	if inst.Flag0 {
		return bits.Shift(ir.ShiftROR, inst.ShiftAmount, inst.Immediate)
	}

	value := v.CPU.Registers[reg(inst.Rm)]
	amount := inst.ShiftAmount
	if inst.Flag2 {
		amount = v.CPU.Registers[reg(inst.Rs)] & 0xFF
	}
	return bits.Shift(inst.ShiftType, amount, value)
}

func reg(n int) int {
	if n == ir.NoReg {
		return 0
	}
	return n
}

// executeDPI runs one data-processing instruction: compute operand2,
// apply the opcode, write the result (unless it's a comparison-only
// opcode), and update flags when flag_1 (S) is set.
func (v *VM) executeDPI(inst ir.Instruction) error {
	op1 := v.CPU.Registers[reg(inst.Rn)]
	op2, shiftCarry := v.operand2(inst)

	var result uint32
	var carry bool
	writeResult := true

	// Logical ops (AND/EOR/TST/TEQ/ORR/MOV) carry the shifter's carry-out;
	// SUB/RSB/CMP carry ¬borrow and ADD carries unsigned overflow. V is
	// never touched by this instruction subset.
	switch inst.Operation {
	case ir.OpAND:
		result = op1 & op2
		carry = shiftCarry
	case ir.OpEOR:
		result = op1 ^ op2
		carry = shiftCarry
	case ir.OpSUB:
		result = op1 - op2
		carry = op1 >= op2
	case ir.OpRSB:
		result = op2 - op1
		carry = op2 >= op1
	case ir.OpADD:
		result = op1 + op2
		carry = result < op1
	case ir.OpTST:
		result = op1 & op2
		carry = shiftCarry
		writeResult = false
	case ir.OpTEQ:
		result = op1 ^ op2
		carry = shiftCarry
		writeResult = false
	case ir.OpCMP:
		result = op1 - op2
		carry = op1 >= op2
		writeResult = false
	case ir.OpORR:
		result = op1 | op2
		carry = shiftCarry
	case ir.OpMOV:
		result = op2
		carry = shiftCarry
	default:
		return fmt.Errorf("vm: unknown data processing opcode 0x%X", inst.Operation)
	}

	if writeResult {
		v.CPU.Registers[reg(inst.Rd)] = result
	}

	if inst.Flag1 {
		v.CPU.SetNZ(result)
		v.CPU.SetC(carry)
	}

	return nil
}

// executeMUL computes rm*rs (low 32 bits), adding rn when flag_0 (the
// accumulate bit) is set.
func (v *VM) executeMUL(inst ir.Instruction) error {
	result := v.CPU.Registers[reg(inst.Rm)] * v.CPU.Registers[reg(inst.Rs)]
	if inst.Flag0 {
		result += v.CPU.Registers[reg(inst.Rn)]
	}
	v.CPU.Registers[reg(inst.Rd)] = result

	if inst.Flag1 {
		v.CPU.SetNZ(result)
	}
	return nil
}

// executeSDT computes the effective address, performs the post-index
// writeback, and loads or stores rd.
func (v *VM) executeSDT(inst ir.Instruction) error {
	offset, _ := v.sdtOffset(inst)
	base := v.CPU.Registers[reg(inst.Rn)]

	var effective uint32
	var writeback uint32
	if inst.Flag1 {
		if inst.Flag2 {
			effective = base + offset
		} else {
			effective = base - offset
		}
	} else {
		effective = base
		if inst.Flag2 {
			writeback = base + offset
		} else {
			writeback = base - offset
		}
	}

	if inst.Flag3 {
		value, err := v.Memory.ReadWord(effective)
		if err != nil {
			return err
		}
		v.CPU.Registers[reg(inst.Rd)] = value
	} else {
		if err := v.Memory.WriteWord(effective, v.CPU.Registers[reg(inst.Rd)]); err != nil {
			return err
		}
	}

	if !inst.Flag1 {
		v.CPU.Registers[reg(inst.Rn)] = writeback
	}
	return nil
}

func (v *VM) sdtOffset(inst ir.Instruction) (uint32, bool) {
	if inst.Flag0 {
		value, carry := bits.Shift(inst.ShiftType, inst.ShiftAmount, v.CPU.Registers[reg(inst.Rm)])
		return value, carry
	}
	return inst.Immediate, false
}

// executeBRA sign-extends the 24-bit word offset, shifts it into a byte
// offset, and writes the target to PC. The assembler has already baked
// the pipeline's +8 bias into the encoded offset.
func (v *VM) executeBRA(inst ir.Instruction) {
	offset := inst.Immediate
	if offset&0x800000 != 0 {
		offset |= 0xFF000000
	}
	v.CPU.SetPC(v.CPU.PC() + (offset << 2))
}
