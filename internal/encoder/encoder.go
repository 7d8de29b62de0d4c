// Package encoder converts the instruction IR into little-endian 32-bit
// machine words, one function per instruction class (spec.md §4.C).
package encoder

import (
	"fmt"

	"github.com/dkestrel/r2asm/internal/ir"
)

// Encode converts inst into its 32-bit encoding. The instruction must
// already carry a resolved Cond, Operation, registers, and immediate/shift
// fields — Encode performs no symbol resolution or operand parsing.
func Encode(inst ir.Instruction) (uint32, error) {
	switch inst.Type {
	case ir.ZER:
		return 0, nil
	case ir.DPI:
		return encodeDPI(inst)
	case ir.MUL:
		return encodeMUL(inst)
	case ir.SDT:
		return encodeSDT(inst)
	case ir.BRA:
		return encodeBRA(inst)
	default:
		return 0, fmt.Errorf("encoder: cannot encode instruction of type %s", inst.Type)
	}
}

func reg(n int) uint32 {
	if n == ir.NoReg {
		return 0
	}
	return uint32(n)
}

// encodeDPI lays out cccc 00 I oooo S rrrr dddd operand2 per spec.md §4.C.
func encodeDPI(inst ir.Instruction) (uint32, error) {
	word := uint32(inst.Cond) << 28

	var iBit uint32
	if inst.Flag0 {
		iBit = 1
	}
	var sBit uint32
	if inst.Flag1 {
		sBit = 1
	}

	word |= iBit << 25
	word |= uint32(inst.Operation) << 21
	word |= sBit << 20
	word |= reg(inst.Rn) << 16
	word |= reg(inst.Rd) << 12

	var operand2 uint32
	if inst.Flag0 {
		rotate := (inst.ShiftAmount / 2) & 0xF
		operand2 = (rotate << 8) | (inst.Immediate & 0xFF)
	} else if inst.Flag2 {
		operand2 = (reg(inst.Rs) << 8) | (uint32(inst.ShiftType) << 5) | (1 << 4) | reg(inst.Rm)
	} else {
		operand2 = (inst.ShiftAmount << 7) | (uint32(inst.ShiftType) << 5) | reg(inst.Rm)
	}

	return word | (operand2 & 0xFFF), nil
}

// encodeMUL lays out cccc 000000 A S dddd nnnn ssss 1001 mmmm.
func encodeMUL(inst ir.Instruction) (uint32, error) {
	word := uint32(inst.Cond) << 28

	var aBit, sBit uint32
	if inst.Flag0 {
		aBit = 1
	}
	if inst.Flag1 {
		sBit = 1
	}

	word |= aBit << 21
	word |= sBit << 20
	word |= reg(inst.Rd) << 16
	word |= reg(inst.Rn) << 12
	word |= reg(inst.Rs) << 8
	word |= 0x9 << 4
	word |= reg(inst.Rm)

	return word, nil
}

// encodeSDT lays out cccc 01 I P U 00 L nnnn dddd offset12.
func encodeSDT(inst ir.Instruction) (uint32, error) {
	word := uint32(inst.Cond)<<28 | (0x1 << 26)

	setBit := func(flag bool, pos uint32) uint32 {
		if flag {
			return 1 << pos
		}
		return 0
	}

	word |= setBit(inst.Flag0, 25)
	word |= setBit(inst.Flag1, 24)
	word |= setBit(inst.Flag2, 23)
	word |= setBit(inst.Flag3, 20)
	word |= reg(inst.Rn) << 16
	word |= reg(inst.Rd) << 12

	var offset uint32
	if inst.Flag0 {
		offset = (inst.ShiftAmount << 7) | (uint32(inst.ShiftType) << 5) | reg(inst.Rm)
	} else {
		offset = inst.Immediate & 0xFFF
	}

	return word | (offset & 0xFFF), nil
}

// encodeBRA lays out cccc 1010 offset24 (the signed word offset already
// computed and truncated by the assembler).
func encodeBRA(inst ir.Instruction) (uint32, error) {
	word := uint32(inst.Cond)<<28 | (0xA << 24)
	return word | (inst.Immediate & 0xFFFFFF), nil
}

// EncodeImmediate searches rotations 0,2,...,30 for an 8-bit value that,
// rotated right by the chosen amount, reproduces value. It returns the
// unrotated 8-bit immediate and the rotation (in bits, matching
// ShiftAmount's units) that the decoder must apply, or ok=false if no
// rotation reconstructs value.
func EncodeImmediate(value uint32) (imm8 uint32, rotateBits uint32, ok bool) {
	for rotate := uint32(0); rotate < 32; rotate += 2 {
		// Left-rotate by `rotate` to find the byte that, ROR'd back by
		// `rotate`, reconstructs value.
		candidate := (value << rotate) | (value >> (32 - rotate))
		if candidate <= 0xFF {
			return candidate, rotate, true
		}
	}
	return 0, 0, false
}
