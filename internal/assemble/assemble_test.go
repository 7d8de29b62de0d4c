package assemble_test

import (
	"testing"

	"github.com/dkestrel/r2asm/internal/assemble"
	"github.com/dkestrel/r2asm/internal/firstpass"
)

func assembleSource(t *testing.T, src string) []uint32 {
	t.Helper()
	lines, table, err := firstpass.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	program, err := assemble.Assemble(lines, table)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return program.Words
}

func TestAssembleSimpleDPI(t *testing.T) {
	words := assembleSource(t, "mov r0, #5\nadd r1, r0, #3\nandeq r0, r0, r0\n")
	if len(words) != 3 {
		t.Fatalf("got %d words, want 3", len(words))
	}
	if words[2] != 0 {
		t.Errorf("halt word = 0x%X, want 0", words[2])
	}
}

func TestAssembleBranchToEarlierLabel(t *testing.T) {
	words := assembleSource(t, "loop:\nadd r0, r0, #1\nb loop\nandeq r0, r0, r0\n")
	if len(words) != 3 {
		t.Fatalf("got %d words, want 3", len(words))
	}
	// b loop: current_word_index=1, target=0 -> offset = (0 - 4 - 8) >> 2 = -3
	if words[1]>>24 != 0xEA {
		t.Errorf("branch cond/opcode byte = 0x%02X, want 0xEA (AL cond, BRA class)", words[1]>>24)
	}
	if words[1]&0xFFFFFF != 0xFFFFFD { // -3 as a 24-bit two's complement value
		t.Errorf("branch offset = 0x%06X, want 0xFFFFFD", words[1]&0xFFFFFF)
	}
}

func TestAssembleLargeImmediateUsesLiteralPool(t *testing.T) {
	words := assembleSource(t, "ldr r0, =0x12345678\nandeq r0, r0, r0\n")
	if len(words) != 3 {
		t.Fatalf("got %d words, want 3 (2 instructions + 1 pool word)", len(words))
	}
	if words[2] != 0x12345678 {
		t.Errorf("pool word = 0x%X, want 0x12345678", words[2])
	}
}

func TestAssembleSmallImmediateFoldsToMov(t *testing.T) {
	words := assembleSource(t, "ldr r0, =10\nandeq r0, r0, r0\n")
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2 (no literal pool)", len(words))
	}
}

func TestAssembleUnknownOpcodeErrors(t *testing.T) {
	lines, table, err := firstpass.Tokenize("frobnicate r0\n")
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if _, err := assemble.Assemble(lines, table); err == nil {
		t.Errorf("expected error for unknown opcode")
	}
}
