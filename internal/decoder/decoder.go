// Package decoder recovers the instruction IR from a 32-bit machine word,
// the exact inverse of package encoder (spec.md §4.D).
package decoder

import "github.com/dkestrel/r2asm/internal/ir"

// Decode classifies and decodes word. Classification order: the all-zero
// word is ZER; else bits 27-22 all zero with 1001 in bits 7-4 is MUL;
// else bits 27-26 pick DPI (00), SDT (01), or BRA (10 with bit 25 set).
func Decode(word uint32) ir.Instruction {
	if word == 0 {
		return ir.Instruction{Type: ir.ZER, Rn: ir.NoReg, Rd: ir.NoReg, Rs: ir.NoReg, Rm: ir.NoReg}
	}

	cond := ir.Cond((word >> 28) & 0xF)
	bits2726 := (word >> 26) & 0x3

	if bits2726 == 0 && (word>>22)&0xF == 0 && (word>>4)&0xF == 0x9 {
		return decodeMUL(word, cond)
	}

	switch bits2726 {
	case 0:
		return decodeDPI(word, cond)
	case 1:
		return decodeSDT(word, cond)
	case 2:
		if (word>>25)&0x1 == 1 {
			return decodeBRA(word, cond)
		}
	}

	return ir.Instruction{Type: ir.NUL, Cond: cond, Rn: ir.NoReg, Rd: ir.NoReg, Rs: ir.NoReg, Rm: ir.NoReg}
}

func decodeDPI(word uint32, cond ir.Cond) ir.Instruction {
	inst := ir.Instruction{
		Type:      ir.DPI,
		Cond:      cond,
		Operation: ir.Opcode((word >> 21) & 0xF),
		Flag0:     (word>>25)&0x1 != 0,
		Flag1:     (word>>20)&0x1 != 0,
		Rn:        int((word >> 16) & 0xF),
		Rd:        int((word >> 12) & 0xF),
		Rs:        ir.NoReg,
		Rm:        ir.NoReg,
	}

	operand2 := word & 0xFFF
	if inst.Flag0 {
		inst.Immediate = operand2 & 0xFF
		inst.ShiftAmount = ((operand2 >> 8) & 0xF) * 2
	} else {
		inst.Rm = int(operand2 & 0xF)
		inst.ShiftType = ir.ShiftKind((operand2 >> 5) & 0x3)
		inst.Flag2 = (operand2>>4)&0x1 != 0
		if inst.Flag2 {
			inst.Rs = int((operand2 >> 8) & 0xF)
		} else {
			inst.ShiftAmount = (operand2 >> 7) & 0x1F
		}
	}

	switch inst.Operation {
	case ir.OpMOV:
		inst.Rn = ir.NoReg
	case ir.OpTST, ir.OpTEQ, ir.OpCMP:
		inst.Rd = ir.NoReg
	}

	return inst
}

func decodeMUL(word uint32, cond ir.Cond) ir.Instruction {
	return ir.Instruction{
		Type:  ir.MUL,
		Cond:  cond,
		Flag0: (word>>21)&0x1 != 0,
		Flag1: (word>>20)&0x1 != 0,
		Rd:    int((word >> 16) & 0xF),
		Rn:    int((word >> 12) & 0xF),
		Rs:    int((word >> 8) & 0xF),
		Rm:    int(word & 0xF),
	}
}

func decodeSDT(word uint32, cond ir.Cond) ir.Instruction {
	inst := ir.Instruction{
		Type:  ir.SDT,
		Cond:  cond,
		Flag0: (word>>25)&0x1 != 0,
		Flag1: (word>>24)&0x1 != 0,
		Flag2: (word>>23)&0x1 != 0,
		Flag3: (word>>20)&0x1 != 0,
		Rn:    int((word >> 16) & 0xF),
		Rd:    int((word >> 12) & 0xF),
		Rs:    ir.NoReg,
		Rm:    ir.NoReg,
	}

	offset := word & 0xFFF
	if inst.Flag0 {
		inst.Rm = int(offset & 0xF)
		inst.ShiftType = ir.ShiftKind((offset >> 5) & 0x3)
		inst.ShiftAmount = (offset >> 7) & 0x1F
	} else {
		inst.Immediate = offset
	}

	return inst
}

func decodeBRA(word uint32, cond ir.Cond) ir.Instruction {
	return ir.Instruction{
		Type:      ir.BRA,
		Cond:      cond,
		Immediate: word & 0xFFFFFF,
		Rn:        ir.NoReg, Rd: ir.NoReg, Rs: ir.NoReg, Rm: ir.NoReg,
	}
}
