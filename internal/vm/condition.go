package vm

import "github.com/dkestrel/r2asm/internal/ir"

// EvaluateCondition reports whether cond currently holds against cpu's
// flags. GE/LT/GT/LE compare against V, which this instruction subset
// never sets — they reduce to comparisons against N alone in practice.
func EvaluateCondition(cpu *CPU, cond ir.Cond) bool {
	switch cond {
	case ir.CondEQ:
		return cpu.Z()
	case ir.CondNE:
		return !cpu.Z()
	case ir.CondGE:
		return cpu.N() == cpu.V()
	case ir.CondLT:
		return cpu.N() != cpu.V()
	case ir.CondGT:
		return !cpu.Z() && cpu.N() == cpu.V()
	case ir.CondLE:
		return cpu.Z() || cpu.N() != cpu.V()
	case ir.CondAL:
		return true
	default:
		return false
	}
}
