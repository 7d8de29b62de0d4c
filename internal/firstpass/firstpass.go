// Package firstpass is the tokenizer / label-table builder the core spec
// treats as an external collaborator: it produces the tokens[][] plus
// label→address map the assembler's second pass consumes (spec.md §6).
// It is intentionally thin — comment/blank stripping, label detection,
// bracket-aware comma splitting — and is not held to the bitfield rigor
// of the in-scope core.
package firstpass

import (
	"fmt"
	"strings"
)

// Line is one tokenized source line: Tokens[0] is the mnemonic (or the
// whole label name for a label-only line), Tokens[1:] are the
// comma-separated operand fields, split at bracket depth 0 only so a
// bracketed addressing expression survives as a single field.
type Line struct {
	Tokens []string
	Source string // original line, for diagnostics
	LineNo int

	label bool // set by Tokenize for "name:" lines
}

// IsLabelOnly reports whether this line is nothing but a label
// declaration ("loop:"), matching spec.md §6's "label-only lines have
// size == 1".
func (l Line) IsLabelOnly() bool {
	return l.label && len(l.Tokens) == 1
}

// SymbolTable maps a label name to its instruction's byte address.
type SymbolTable struct {
	addresses map[string]uint32
	size      int // count of label-only lines
}

// Address implements the get_address(table, label) interface.
func (t *SymbolTable) Address(label string) (uint32, bool) {
	addr, ok := t.addresses[label]
	return addr, ok
}

// Size returns the count of label-only lines, per spec.md §6.
func (t *SymbolTable) Size() int {
	return t.size
}

// Tokenize splits assembly source into tokens[][] and a symbol table. A
// label line ends in ':'; any other non-blank, non-comment line is an
// instruction line whose address is 4 * (number of instruction lines
// already emitted).
func Tokenize(source string) ([]Line, *SymbolTable, error) {
	table := &SymbolTable{addresses: make(map[string]uint32)}
	var lines []Line
	instrCount := 0

	for lineNo, raw := range strings.Split(source, "\n") {
		text := stripComment(raw)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if label, ok := labelName(text); ok {
			if _, exists := table.addresses[label]; exists {
				return nil, nil, fmt.Errorf("firstpass: line %d: duplicate label %q", lineNo+1, label)
			}
			table.addresses[label] = uint32(instrCount) * 4
			table.size++
			lines = append(lines, Line{Tokens: []string{label}, Source: raw, LineNo: lineNo + 1, label: true})
			continue
		}

		tokens, err := tokenizeInstruction(text)
		if err != nil {
			return nil, nil, fmt.Errorf("firstpass: line %d: %w", lineNo+1, err)
		}
		lines = append(lines, Line{Tokens: tokens, Source: raw, LineNo: lineNo + 1})
		instrCount++
	}

	return lines, table, nil
}

func stripComment(line string) string {
	for _, marker := range []string{";", "//", "@"} {
		if idx := strings.Index(line, marker); idx >= 0 {
			line = line[:idx]
		}
	}
	return line
}

func labelName(text string) (string, bool) {
	if !strings.HasSuffix(text, ":") {
		return "", false
	}
	name := strings.TrimSuffix(text, ":")
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t,[]") {
		return "", false
	}
	return name, true
}

// tokenizeInstruction splits "mnemonic operand, operand, ..." into
// [mnemonic, field...], keeping commas inside [] brackets from splitting
// their field.
func tokenizeInstruction(text string) ([]string, error) {
	sp := strings.IndexAny(text, " \t")
	if sp < 0 {
		return []string{strings.TrimSpace(text)}, nil
	}

	mnemonic := text[:sp]
	rest := strings.TrimSpace(text[sp:])

	fields, err := splitTopLevel(rest)
	if err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(fields)+1)
	tokens = append(tokens, mnemonic)
	tokens = append(tokens, fields...)
	return tokens, nil
}

// splitTopLevel splits s on commas outside of '[' ... ']' nesting.
func splitTopLevel(s string) ([]string, error) {
	var fields []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced ']' in %q", s)
			}
		case ',':
			if depth == 0 {
				fields = append(fields, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced '[' in %q", s)
	}
	last := strings.TrimSpace(s[start:])
	if last != "" {
		fields = append(fields, last)
	}
	return fields, nil
}
