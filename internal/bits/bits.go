// Package bits implements the two's-complement and barrel-shifter
// primitives the encoder, decoder, and emulator execute units build on.
package bits

import "github.com/dkestrel/r2asm/internal/ir"

// Negate returns the two's-complement negation of w: (~w) + 1.
func Negate(w uint32) uint32 {
	return (^w) + 1
}

// IsNegative reports whether bit 31 of w is set.
func IsNegative(w uint32) bool {
	return w>>31 != 0
}

// Absolute returns the two's-complement absolute value of w.
func Absolute(w uint32) uint32 {
	if IsNegative(w) {
		return Negate(w)
	}
	return w
}

// SignedToTwosComplement returns the 32-bit bit-pattern of a signed value.
func SignedToTwosComplement(v int32) uint32 {
	return uint32(v)
}

// ToSignedLong widens a two's-complement word to a signed 64-bit value,
// the way the reference printer computes DEC(0xHEX) register dumps.
func ToSignedLong(w uint32) int64 {
	result := int64(Absolute(w))
	if IsNegative(w) {
		result = -result
	}
	return result
}

// Shift runs the barrel shifter: kind/amount/value in, (result, carryOut) out.
// A shift amount of zero always reports a clear carry, regardless of kind.
func Shift(kind ir.ShiftKind, amount uint32, value uint32) (result uint32, carryOut bool) {
	if amount == 0 {
		return value, false
	}

	switch kind {
	case ir.ShiftLSL:
		if amount >= 32 {
			result = 0
		} else {
			result = value << amount
		}
		if amount <= 32 {
			carryOut = (value>>(32-amount))&1 != 0
		}

	case ir.ShiftLSR:
		if amount >= 32 {
			return 0, false
		}
		result = value >> amount
		carryOut = bitAt(value, amount-1)

	case ir.ShiftASR:
		result = arithmeticShiftRight(value, amount)
		carryOut = bitAt(value, amount-1)

	case ir.ShiftROR:
		rot := amount % 32
		result = rotateRight(value, rot)
		carryOut = bitAt(value, amount-1)

	default:
		result = value
	}

	return result, carryOut
}

// bitAt returns bit n of value, or false for n outside [0,31] — the shift
// amount exceeded the width of the word.
func bitAt(value uint32, n uint32) bool {
	if n >= 32 {
		return false
	}
	return (value>>n)&1 != 0
}

func arithmeticShiftRight(value uint32, amount uint32) uint32 {
	if amount >= 32 {
		if IsNegative(value) {
			return 0xFFFFFFFF
		}
		return 0
	}
	result := value >> amount
	if IsNegative(value) {
		result |= ^uint32(0) << (32 - amount)
	}
	return result
}

func rotateRight(value uint32, amount uint32) uint32 {
	if amount == 0 {
		return value
	}
	return (value >> amount) | (value << (32 - amount))
}
