package decoder_test

import (
	"testing"

	"github.com/dkestrel/r2asm/internal/decoder"
	"github.com/dkestrel/r2asm/internal/encoder"
	"github.com/dkestrel/r2asm/internal/ir"
)

func TestDecodeZER(t *testing.T) {
	inst := decoder.Decode(0)
	if inst.Type != ir.ZER {
		t.Errorf("Decode(0).Type = %s, want ZER", inst.Type)
	}
}

func TestRoundTripDPIImmediate(t *testing.T) {
	want := ir.Instruction{
		Type: ir.DPI, Cond: ir.CondNE, Operation: ir.OpADD,
		Rn: 3, Rd: 4, Flag0: true, Flag1: true, Immediate: 0xFF,
	}
	word, err := encoder.Encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := decoder.Decode(word)
	if got.Type != want.Type || got.Cond != want.Cond || got.Operation != want.Operation ||
		got.Rn != want.Rn || got.Rd != want.Rd || got.Flag0 != want.Flag0 ||
		got.Flag1 != want.Flag1 || got.Immediate != want.Immediate {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestRoundTripMOVClearsRn(t *testing.T) {
	inst := ir.Instruction{Type: ir.DPI, Cond: ir.CondAL, Operation: ir.OpMOV, Rd: 5, Rn: ir.NoReg, Flag0: true, Immediate: 7}
	word, err := encoder.Encode(inst)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := decoder.Decode(word)
	if got.Rn != ir.NoReg {
		t.Errorf("decoded MOV should have Rn = NoReg, got %d", got.Rn)
	}
}

func TestRoundTripCompareClearsRd(t *testing.T) {
	inst := ir.Instruction{Type: ir.DPI, Cond: ir.CondAL, Operation: ir.OpCMP, Rn: 2, Rd: ir.NoReg, Flag1: true, Flag0: true, Immediate: 1}
	word, err := encoder.Encode(inst)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := decoder.Decode(word)
	if got.Rd != ir.NoReg {
		t.Errorf("decoded CMP should have Rd = NoReg, got %d", got.Rd)
	}
}

func TestRoundTripMUL(t *testing.T) {
	want := ir.Instruction{Type: ir.MUL, Cond: ir.CondAL, Rd: 1, Rn: 2, Rs: 3, Rm: 4, Flag0: true, Flag1: true}
	word, err := encoder.Encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := decoder.Decode(word)
	if got != want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestRoundTripSDT(t *testing.T) {
	want := ir.Instruction{
		Type: ir.SDT, Cond: ir.CondAL, Rn: 1, Rd: 2, Rs: ir.NoReg, Rm: ir.NoReg,
		Flag1: true, Flag2: true, Flag3: true, Immediate: 4,
	}
	word, err := encoder.Encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := decoder.Decode(word)
	if got != want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestRoundTripBRA(t *testing.T) {
	want := ir.Instruction{Type: ir.BRA, Cond: ir.CondEQ, Immediate: 0x123456, Rn: ir.NoReg, Rd: ir.NoReg, Rs: ir.NoReg, Rm: ir.NoReg}
	word, err := encoder.Encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got := decoder.Decode(word)
	if got != want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}
