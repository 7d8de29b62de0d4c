package bits_test

import (
	"testing"

	"github.com/dkestrel/r2asm/internal/bits"
	"github.com/dkestrel/r2asm/internal/ir"
)

func TestShiftLSL(t *testing.T) {
	tests := []struct {
		name        string
		value       uint32
		amount      uint32
		wantResult  uint32
		wantCarry   bool
	}{
		{"zero amount", 0x1, 0, 0x1, false},
		{"simple shift", 0x1, 4, 0x10, false},
		{"carry out bit31", 0x80000001, 1, 0x2, true},
		{"amount 32 clears result, carry is bit0", 0x1, 32, 0, true},
		{"amount over 32", 0x1, 33, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, carry := bits.Shift(ir.ShiftLSL, tt.amount, tt.value)
			if result != tt.wantResult || carry != tt.wantCarry {
				t.Errorf("Shift(LSL, %d, 0x%X) = (0x%X, %v), want (0x%X, %v)",
					tt.amount, tt.value, result, carry, tt.wantResult, tt.wantCarry)
			}
		})
	}
}

func TestShiftLSR(t *testing.T) {
	result, carry := bits.Shift(ir.ShiftLSR, 1, 0x3)
	if result != 0x1 || !carry {
		t.Errorf("Shift(LSR, 1, 0x3) = (0x%X, %v), want (0x1, true)", result, carry)
	}
}

func TestShiftLSRSaturatesAt32(t *testing.T) {
	tests := []struct {
		name   string
		amount uint32
	}{
		{"amount exactly 32", 32},
		{"amount over 32", 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, carry := bits.Shift(ir.ShiftLSR, tt.amount, 0x80000000)
			if result != 0 || carry {
				t.Errorf("Shift(LSR, %d, 0x80000000) = (0x%X, %v), want (0, false)", tt.amount, result, carry)
			}
		})
	}
}

func TestShiftASRPreservesSign(t *testing.T) {
	result, carry := bits.Shift(ir.ShiftASR, 4, 0x80000000)
	if result != 0xF8000000 {
		t.Errorf("Shift(ASR, 4, 0x80000000) = 0x%X, want 0xF8000000", result)
	}
	if carry {
		t.Errorf("expected no carry-out from bit 3 of 0x80000000")
	}
}

func TestShiftROR(t *testing.T) {
	result, carry := bits.Shift(ir.ShiftROR, 4, 0xF)
	if result != 0xF0000000 || !carry {
		t.Errorf("Shift(ROR, 4, 0xF) = (0x%X, %v), want (0xF0000000, true)", result, carry)
	}
}

func TestSignedToTwosComplementRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 1000, -1000, -8} {
		word := bits.SignedToTwosComplement(v)
		if got := bits.ToSignedLong(word); got != int64(v) {
			t.Errorf("round trip of %d: got %d", v, got)
		}
	}
}

func TestAbsoluteAndNegate(t *testing.T) {
	if got := bits.Absolute(bits.Negate(5)); got != 5 {
		t.Errorf("Absolute(Negate(5)) = %d, want 5", got)
	}
	if !bits.IsNegative(bits.Negate(5)) {
		t.Errorf("Negate(5) should be negative")
	}
}
