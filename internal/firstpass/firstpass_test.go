package firstpass_test

import (
	"testing"

	"github.com/dkestrel/r2asm/internal/firstpass"
)

func TestTokenizeSkipsBlankAndComments(t *testing.T) {
	src := "\n; comment\nmov r0, #1 ; trailing\n"
	lines, _, err := firstpass.Tokenize(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].Tokens[0] != "mov" {
		t.Errorf("got mnemonic %q, want mov", lines[0].Tokens[0])
	}
}

func TestTokenizeLabelsBuildSymbolTable(t *testing.T) {
	src := "loop:\nadd r0, r0, #1\nb loop\n"
	lines, table, err := firstpass.Tokenize(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lines[0].IsLabelOnly() {
		t.Errorf("expected first line to be label-only")
	}
	addr, ok := table.Address("loop")
	if !ok || addr != 0 {
		t.Errorf("got Address(loop) = (%d, %v), want (0, true)", addr, ok)
	}
	if table.Size() != 1 {
		t.Errorf("got Size() = %d, want 1", table.Size())
	}
}

func TestTokenizeDuplicateLabelErrors(t *testing.T) {
	src := "loop:\nmov r0, #1\nloop:\nmov r1, #2\n"
	if _, _, err := firstpass.Tokenize(src); err == nil {
		t.Errorf("expected duplicate label error")
	}
}

func TestTokenizeBracketAwareComma(t *testing.T) {
	lines, _, err := firstpass.Tokenize("ldr r0, [r1, #4]\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tokens := lines[0].Tokens
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3: %v", len(tokens), tokens)
	}
	if tokens[2] != "[r1, #4]" {
		t.Errorf("got tokens[2] = %q, want %q", tokens[2], "[r1, #4]")
	}
}

func TestTokenizePostIndexComma(t *testing.T) {
	lines, _, err := firstpass.Tokenize("ldr r0, [r1], #4\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tokens := lines[0].Tokens
	if len(tokens) != 4 {
		t.Fatalf("got %d tokens, want 4: %v", len(tokens), tokens)
	}
	if tokens[2] != "[r1]" || tokens[3] != "#4" {
		t.Errorf("got tokens[2:] = %v", tokens[2:])
	}
}
