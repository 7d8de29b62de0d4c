package encoder_test

import (
	"testing"

	"github.com/dkestrel/r2asm/internal/encoder"
	"github.com/dkestrel/r2asm/internal/ir"
)

func TestEncodeZER(t *testing.T) {
	word, err := encoder.Encode(ir.Instruction{Type: ir.ZER})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if word != 0 {
		t.Errorf("ZER encoded to 0x%X, want 0", word)
	}
}

func TestEncodeDPIImmediate(t *testing.T) {
	inst := ir.Instruction{
		Type: ir.DPI, Cond: ir.CondAL, Operation: ir.OpADD,
		Rn: 1, Rd: 2, Flag0: true, Immediate: 5,
	}
	word, err := encoder.Encode(inst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := uint32(ir.CondAL)<<28 | 1<<25 | uint32(ir.OpADD)<<21 | 1<<16 | 2<<12 | 5
	if word != want {
		t.Errorf("encoded 0x%08X, want 0x%08X", word, want)
	}
}

func TestEncodeBranchMasksOffset(t *testing.T) {
	inst := ir.Instruction{Type: ir.BRA, Cond: ir.CondEQ, Immediate: 0xFFFFFFFF}
	word, err := encoder.Encode(inst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if word&0xFFFFFF != 0xFFFFFF {
		t.Errorf("branch offset not masked to 24 bits: 0x%X", word)
	}
}

func TestEncodeImmediateRotationSearch(t *testing.T) {
	tests := []struct {
		value      uint32
		wantOK     bool
		wantImm8   uint32
		wantRotate uint32
	}{
		{0xFF, true, 0xFF, 0},
		{0xFF00, true, 0xFF, 24},
		{0xF000000F, true, 0xFF, 4},
		{0x101, false, 0, 0},
	}
	for _, tt := range tests {
		imm8, rotate, ok := encoder.EncodeImmediate(tt.value)
		if ok != tt.wantOK {
			t.Errorf("EncodeImmediate(0x%X) ok = %v, want %v", tt.value, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if imm8 != tt.wantImm8 || rotate != tt.wantRotate {
			t.Errorf("EncodeImmediate(0x%X) = (0x%X, %d), want (0x%X, %d)",
				tt.value, imm8, rotate, tt.wantImm8, tt.wantRotate)
		}
	}
}
