// Package operand turns the textual operand portion of an instruction line
// into IR field assignments: immediates (with the rotated-8-bit reduction
// search), bare registers, shift suffixes, and the five SDT addressing-mode
// shapes (spec.md §4.E).
package operand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dkestrel/r2asm/internal/bits"
	"github.com/dkestrel/r2asm/internal/encoder"
	"github.com/dkestrel/r2asm/internal/ir"
)

// ParseRegister parses "rN" (N in [0,15]), case-insensitively.
func ParseRegister(tok string) (int, error) {
	tok = strings.TrimSpace(tok)
	lower := strings.ToLower(tok)
	if !strings.HasPrefix(lower, "r") {
		return 0, fmt.Errorf("operand: %q is not a register", tok)
	}
	n, err := strconv.Atoi(lower[1:])
	if err != nil || n < 0 || n > 15 {
		return 0, fmt.Errorf("operand: invalid register %q", tok)
	}
	return n, nil
}

// ParseNumber parses a bare signed integer literal: decimal, 0x hex, or 0b
// binary, with an optional leading '-'. The '#' immediate marker, if
// present, is stripped first.
func ParseNumber(tok string) (int64, error) {
	tok = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tok), "#"))
	if tok == "" {
		return 0, fmt.Errorf("operand: empty immediate")
	}

	neg := false
	if strings.HasPrefix(tok, "-") {
		neg = true
		tok = tok[1:]
	}

	var value uint64
	var err error
	switch {
	case strings.HasPrefix(tok, "0x"), strings.HasPrefix(tok, "0X"):
		value, err = strconv.ParseUint(tok[2:], 16, 32)
	case strings.HasPrefix(tok, "0b"), strings.HasPrefix(tok, "0B"):
		value, err = strconv.ParseUint(tok[2:], 2, 32)
	default:
		value, err = strconv.ParseUint(tok, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("operand: malformed immediate %q: %w", tok, err)
	}

	result := int64(value)
	if neg {
		result = -result
	}
	return result, nil
}

// shiftKindOf maps the shift mnemonic to its ShiftKind.
func shiftKindOf(mnemonic string) (ir.ShiftKind, bool) {
	switch strings.ToLower(mnemonic) {
	case "lsl":
		return ir.ShiftLSL, true
	case "lsr":
		return ir.ShiftLSR, true
	case "asr":
		return ir.ShiftASR, true
	case "ror":
		return ir.ShiftROR, true
	default:
		return 0, false
	}
}

// ApplyShift parses "<kind> #amount" or "<kind> rS" and writes ShiftType
// plus either ShiftAmount or (Rs, Flag2) into inst.
func ApplyShift(inst *ir.Instruction, kindTok, amountTok string) error {
	kind, ok := shiftKindOf(kindTok)
	if !ok {
		return fmt.Errorf("operand: unknown shift kind %q", kindTok)
	}
	inst.ShiftType = kind

	amountTok = strings.TrimSpace(amountTok)
	if strings.HasPrefix(amountTok, "#") {
		v, err := ParseNumber(amountTok)
		if err != nil {
			return err
		}
		if v < 0 || v > 31 {
			return fmt.Errorf("operand: shift amount %d out of range [0,31]", v)
		}
		inst.ShiftAmount = uint32(v)
		return nil
	}

	rs, err := ParseRegister(amountTok)
	if err != nil {
		return fmt.Errorf("operand: invalid shift amount %q: %w", amountTok, err)
	}
	inst.Rs = rs
	inst.Flag2 = true
	return nil
}

// ApplyImmediateOperand2 encodes value as a DPI operand2 immediate: a
// direct 8-bit value, or an 8-bit value reducible by an even rotation in
// [0,30]. Sets Flag0, Immediate, and ShiftAmount (holding the rotation).
func ApplyImmediateOperand2(inst *ir.Instruction, value uint32) error {
	imm8, rotate, ok := encoder.EncodeImmediate(value)
	if !ok {
		return fmt.Errorf("operand: immediate 0x%X cannot be encoded as a rotated 8-bit value", value)
	}
	inst.Flag0 = true
	inst.Immediate = imm8
	inst.ShiftAmount = rotate
	return nil
}

// ParseDataOperand2 handles the tail of a DPI instruction's operand list:
// either "#expr" or "Rm{, <shift> {#amount|rS}}".
func ParseDataOperand2(inst *ir.Instruction, fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("operand: missing operand2")
	}

	first := strings.TrimSpace(fields[0])
	if strings.HasPrefix(first, "#") {
		v, err := ParseNumber(first)
		if err != nil {
			return err
		}
		return ApplyImmediateOperand2(inst, uint32(v))
	}

	rm, err := ParseRegister(first)
	if err != nil {
		return err
	}
	inst.Rm = rm

	if len(fields) >= 3 {
		return ApplyShift(inst, fields[1], fields[2])
	}
	if len(fields) == 2 {
		parts := strings.Fields(fields[1])
		if len(parts) != 2 {
			return fmt.Errorf("operand: malformed shift suffix %q", fields[1])
		}
		return ApplyShift(inst, parts[0], parts[1])
	}
	return nil
}

// ParseAddressingMode handles the five SDT bracket shapes following Rd:
//
//	[Rn]                    pre-index, zero offset
//	[Rn], #imm              post-index immediate
//	[Rn], ±Rm{, <shift>}    post-index register
//	[Rn, #imm]              pre-index immediate
//	[Rn, ±Rm{, <shift>}]    pre-index register
func ParseAddressingMode(inst *ir.Instruction, tail string) error {
	tail = strings.TrimSpace(tail)
	if !strings.HasPrefix(tail, "[") {
		return fmt.Errorf("operand: addressing mode must start with '[': %q", tail)
	}

	closeIdx := strings.Index(tail, "]")
	if closeIdx < 0 {
		return fmt.Errorf("operand: unterminated addressing mode %q", tail)
	}

	inner := tail[1:closeIdx]
	after := strings.TrimSpace(tail[closeIdx+1:])
	innerFields := splitFields(inner)

	if len(innerFields) == 0 {
		return fmt.Errorf("operand: empty addressing mode")
	}

	rn, err := ParseRegister(innerFields[0])
	if err != nil {
		return err
	}
	inst.Rn = rn

	switch {
	case after == "" && len(innerFields) == 1:
		// [Rn]
		inst.Flag1 = true
		inst.Flag2 = true
		return nil

	case after != "":
		// post-index: "], <rest>"
		rest := strings.TrimPrefix(after, ",")
		rest = strings.TrimSpace(rest)
		fields := splitFields(rest)
		return parsePostIndex(inst, fields)

	default:
		// pre-index: [Rn, <rest>]
		return parsePreIndex(inst, innerFields[1:])
	}
}

func parsePostIndex(inst *ir.Instruction, fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("operand: missing post-index offset")
	}
	inst.Flag1 = false

	first := strings.TrimSpace(fields[0])
	if strings.HasPrefix(first, "#") {
		v, err := ParseNumber(first)
		if err != nil {
			return err
		}
		inst.Flag2 = v >= 0
		inst.Immediate = bits.Absolute(uint32(v))
		return nil
	}

	inst.Flag0 = true
	return parseRegisterOffset(inst, fields)
}

func parsePreIndex(inst *ir.Instruction, fields []string) error {
	inst.Flag1 = true
	if len(fields) == 0 {
		inst.Flag2 = true
		return nil
	}

	first := strings.TrimSpace(fields[0])
	if strings.HasPrefix(first, "#") {
		v, err := ParseNumber(first)
		if err != nil {
			return err
		}
		inst.Immediate = bits.Absolute(uint32(v))
		inst.Flag2 = !bits.IsNegative(uint32(v))
		return nil
	}

	inst.Flag0 = true
	return parseRegisterOffset(inst, fields)
}

// parseRegisterOffset parses "{+/-}Rm{, <shift>}" into Rm/Flag2/shift.
func parseRegisterOffset(inst *ir.Instruction, fields []string) error {
	regTok := strings.TrimSpace(fields[0])
	inst.Flag2 = true
	if strings.HasPrefix(regTok, "-") {
		inst.Flag2 = false
		regTok = regTok[1:]
	} else if strings.HasPrefix(regTok, "+") {
		regTok = regTok[1:]
	}

	rm, err := ParseRegister(regTok)
	if err != nil {
		return err
	}
	inst.Rm = rm

	if len(fields) >= 2 {
		parts := strings.Fields(fields[1])
		if len(parts) != 2 {
			return fmt.Errorf("operand: malformed shift suffix %q", fields[1])
		}
		return ApplyShift(inst, parts[0], parts[1])
	}
	return nil
}

// splitFields splits a comma-separated operand tail, trimming whitespace
// around each field and dropping empties.
func splitFields(s string) []string {
	raw := strings.Split(s, ",")
	fields := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r != "" {
			fields = append(fields, r)
		}
	}
	return fields
}
