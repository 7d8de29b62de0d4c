// Package assemble implements the assembler's second pass: mnemonic
// dispatch, operand parsing, symbol resolution, and the large-immediate
// literal-pool strategy (spec.md §4.F).
package assemble

import (
	"fmt"
	"strings"

	"github.com/dkestrel/r2asm/internal/bits"
	"github.com/dkestrel/r2asm/internal/encoder"
	"github.com/dkestrel/r2asm/internal/firstpass"
	"github.com/dkestrel/r2asm/internal/ir"
	"github.com/dkestrel/r2asm/internal/operand"
)

// dpiArithmeticOps names the three-operand DPI mnemonics (arithmetic and
// logical) that share the "rd, rn, operand2" shape.
var dpiArithmeticOps = map[string]ir.Opcode{
	"add": ir.OpADD, "sub": ir.OpSUB, "rsb": ir.OpRSB,
	"and": ir.OpAND, "eor": ir.OpEOR, "orr": ir.OpORR,
}

var dpiCompareOps = map[string]ir.Opcode{
	"tst": ir.OpTST, "teq": ir.OpTEQ, "cmp": ir.OpCMP,
}

var branchConds = map[string]ir.Cond{
	"b": ir.CondAL, "beq": ir.CondEQ, "bne": ir.CondNE,
	"bge": ir.CondGE, "blt": ir.CondLT, "bgt": ir.CondGT, "ble": ir.CondLE,
}

// Program is the assembled output: the program words followed by the
// literal pool, ready to be written out in order.
type Program struct {
	Words []uint32
}

// Assemble runs the second pass over tokenized lines, producing the full
// output word stream (instructions, then the trailing literal pool).
func Assemble(lines []firstpass.Line, table *firstpass.SymbolTable) (*Program, error) {
	maxLines := len(lines) - table.Size()

	var words []uint32
	var pool []uint32

	for _, line := range lines {
		if line.IsLabelOnly() {
			continue
		}

		mnemonic := strings.ToLower(line.Tokens[0])
		fields := line.Tokens[1:]
		currentIndex := uint32(len(words))

		inst, poolWord, hasPoolWord, err := dispatch(mnemonic, fields, table, currentIndex, maxLines, uint32(len(pool)))
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line.LineNo, strings.TrimSpace(line.Source), err)
		}

		word, err := encoder.Encode(inst)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line.LineNo, strings.TrimSpace(line.Source), err)
		}
		words = append(words, word)

		if hasPoolWord {
			pool = append(pool, poolWord)
		}
	}

	words = append(words, pool...)
	return &Program{Words: words}, nil
}

// dispatch assembles one instruction line into an IR record. When the
// line is a large-immediate "ldr rd, =expr" it also returns the literal
// word to append to the pool.
func dispatch(mnemonic string, fields []string, table *firstpass.SymbolTable, currentIndex uint32, maxLines int, poolSizeBefore uint32) (ir.Instruction, uint32, bool, error) {
	switch mnemonic {
	case "andeq":
		return assembleHalt(fields)
	case "mov":
		return assembleMov(fields)
	case "mul", "mla":
		return assembleMultiply(mnemonic, fields)
	case "ldr", "str":
		return assembleSDT(mnemonic, fields, table, currentIndex, maxLines, poolSizeBefore)
	case "lsl", "lsr", "asr", "ror":
		return assembleShiftStandalone(mnemonic, fields)
	}

	if op, ok := dpiArithmeticOps[mnemonic]; ok {
		return assembleDPIArithmetic(op, fields)
	}
	if op, ok := dpiCompareOps[mnemonic]; ok {
		return assembleDPICompare(op, fields)
	}
	if cond, ok := branchConds[mnemonic]; ok {
		return assembleBranch(cond, fields, table, currentIndex)
	}

	return ir.Instruction{}, 0, false, fmt.Errorf("unknown opcode %q", mnemonic)
}

func newDPI() ir.Instruction {
	inst := ir.New()
	inst.Type = ir.DPI
	inst.Cond = ir.CondAL
	return inst
}

func assembleHalt(fields []string) (ir.Instruction, uint32, bool, error) {
	if len(fields) != 3 {
		return ir.Instruction{}, 0, false, fmt.Errorf("andeq requires 3 register operands, got %d", len(fields))
	}
	inst := ir.New()
	inst.Type = ir.ZER
	return inst, 0, false, nil
}

func assembleDPIArithmetic(op ir.Opcode, fields []string) (ir.Instruction, uint32, bool, error) {
	if len(fields) < 3 {
		return ir.Instruction{}, 0, false, fmt.Errorf("expected 3 operands, got %d", len(fields))
	}
	inst := newDPI()
	inst.Operation = op

	rd, err := operand.ParseRegister(fields[0])
	if err != nil {
		return ir.Instruction{}, 0, false, err
	}
	rn, err := operand.ParseRegister(fields[1])
	if err != nil {
		return ir.Instruction{}, 0, false, err
	}
	inst.Rd, inst.Rn = rd, rn

	if err := operand.ParseDataOperand2(&inst, fields[2:]); err != nil {
		return ir.Instruction{}, 0, false, err
	}
	return inst, 0, false, nil
}

func assembleMov(fields []string) (ir.Instruction, uint32, bool, error) {
	if len(fields) < 2 {
		return ir.Instruction{}, 0, false, fmt.Errorf("mov requires at least 2 operands, got %d", len(fields))
	}
	inst := newDPI()
	inst.Operation = ir.OpMOV
	inst.Rn = ir.NoReg

	rd, err := operand.ParseRegister(fields[0])
	if err != nil {
		return ir.Instruction{}, 0, false, err
	}
	inst.Rd = rd

	if err := operand.ParseDataOperand2(&inst, fields[1:]); err != nil {
		return ir.Instruction{}, 0, false, err
	}
	return inst, 0, false, nil
}

func assembleDPICompare(op ir.Opcode, fields []string) (ir.Instruction, uint32, bool, error) {
	if len(fields) < 2 {
		return ir.Instruction{}, 0, false, fmt.Errorf("expected 2 operands, got %d", len(fields))
	}
	inst := newDPI()
	inst.Operation = op
	inst.Flag1 = true
	inst.Rd = ir.NoReg

	rn, err := operand.ParseRegister(fields[0])
	if err != nil {
		return ir.Instruction{}, 0, false, err
	}
	inst.Rn = rn

	if err := operand.ParseDataOperand2(&inst, fields[1:]); err != nil {
		return ir.Instruction{}, 0, false, err
	}
	return inst, 0, false, nil
}

// assembleShiftStandalone rewrites "lsl Rn, #x" / "lsl Rn, Rm" directly
// into the equivalent "mov Rn, Rn, lsl #x" IR, without round-tripping
// through synthesized text (spec.md §9 design note).
func assembleShiftStandalone(mnemonic string, fields []string) (ir.Instruction, uint32, bool, error) {
	if len(fields) < 2 {
		return ir.Instruction{}, 0, false, fmt.Errorf("%s requires 2 operands, got %d", mnemonic, len(fields))
	}
	inst := newDPI()
	inst.Operation = ir.OpMOV

	rd, err := operand.ParseRegister(fields[0])
	if err != nil {
		return ir.Instruction{}, 0, false, err
	}
	inst.Rd = rd
	inst.Rm = rd
	inst.Rn = ir.NoReg

	if err := operand.ApplyShift(&inst, mnemonic, fields[1]); err != nil {
		return ir.Instruction{}, 0, false, err
	}
	return inst, 0, false, nil
}

func assembleMultiply(mnemonic string, fields []string) (ir.Instruction, uint32, bool, error) {
	inst := ir.New()
	inst.Type = ir.MUL
	inst.Cond = ir.CondAL

	need := 3
	if mnemonic == "mla" {
		need = 4
	}
	if len(fields) < need {
		return ir.Instruction{}, 0, false, fmt.Errorf("%s requires %d operands, got %d", mnemonic, need, len(fields))
	}

	rd, err := operand.ParseRegister(fields[0])
	if err != nil {
		return ir.Instruction{}, 0, false, err
	}
	rm, err := operand.ParseRegister(fields[1])
	if err != nil {
		return ir.Instruction{}, 0, false, err
	}
	rs, err := operand.ParseRegister(fields[2])
	if err != nil {
		return ir.Instruction{}, 0, false, err
	}
	inst.Rd, inst.Rm, inst.Rs = rd, rm, rs

	if mnemonic == "mla" {
		inst.Flag0 = true
		rn, err := operand.ParseRegister(fields[3])
		if err != nil {
			return ir.Instruction{}, 0, false, err
		}
		inst.Rn = rn
	}
	return inst, 0, false, nil
}

func assembleSDT(mnemonic string, fields []string, table *firstpass.SymbolTable, currentIndex uint32, maxLines int, poolSizeBefore uint32) (ir.Instruction, uint32, bool, error) {
	if len(fields) < 2 {
		return ir.Instruction{}, 0, false, fmt.Errorf("%s requires an addressing operand, got %d fields", mnemonic, len(fields))
	}

	inst := ir.New()
	inst.Type = ir.SDT
	inst.Cond = ir.CondAL
	inst.Flag2 = true
	if mnemonic == "ldr" {
		inst.Flag3 = true
	}

	rd, err := operand.ParseRegister(fields[0])
	if err != nil {
		return ir.Instruction{}, 0, false, err
	}
	inst.Rd = rd

	tail := strings.Join(fields[1:], ", ")

	if mnemonic == "ldr" && strings.HasPrefix(strings.TrimSpace(tail), "=") {
		return assembleLargeImmediate(inst, tail, currentIndex, maxLines, poolSizeBefore)
	}

	if err := operand.ParseAddressingMode(&inst, tail); err != nil {
		return ir.Instruction{}, 0, false, err
	}
	return inst, 0, false, nil
}

// assembleLargeImmediate implements the "ldr Rd, =expr" rule: small
// values fold to a plain MOV, large ones append to the literal pool and
// load PC-relative.
func assembleLargeImmediate(inst ir.Instruction, tail string, currentIndex uint32, maxLines int, poolSizeBefore uint32) (ir.Instruction, uint32, bool, error) {
	exprTok := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tail), "="))
	value, err := operand.ParseNumber(exprTok)
	if err != nil {
		return ir.Instruction{}, 0, false, err
	}
	uvalue := uint32(value)

	if uvalue <= 0xFF {
		mov := newDPI()
		mov.Operation = ir.OpMOV
		mov.Rd = inst.Rd
		mov.Rn = ir.NoReg
		if err := operand.ApplyImmediateOperand2(&mov, uvalue); err != nil {
			return ir.Instruction{}, 0, false, err
		}
		return mov, 0, false, nil
	}

	inst.Flag1 = true
	inst.Flag2 = true
	inst.Rn = 15 // PC
	offset := int64(uint32(maxLines)+poolSizeBefore-currentIndex)*4 - 8
	inst.Immediate = uint32(int32(offset)) & 0xFFF
	return inst, uvalue, true, nil
}

func assembleBranch(cond ir.Cond, fields []string, table *firstpass.SymbolTable, currentIndex uint32) (ir.Instruction, uint32, bool, error) {
	if len(fields) != 1 {
		return ir.Instruction{}, 0, false, fmt.Errorf("branch requires exactly 1 label operand, got %d", len(fields))
	}
	label := strings.TrimSpace(fields[0])
	target, ok := table.Address(label)
	if !ok {
		return ir.Instruction{}, 0, false, fmt.Errorf("undefined branch target %q", label)
	}

	inst := ir.New()
	inst.Type = ir.BRA
	inst.Cond = cond

	signed := int32(target) - int32(currentIndex*4) - 8
	word := bits.SignedToTwosComplement(signed)
	inst.Immediate = (word >> 2) & 0xFFFFFF
	return inst, 0, false, nil
}
