// Package inspector is a read-only, post-halt state viewer built on the
// teacher's tview/tcell debugger TUI, reduced to a single-screen display
// since this system has no stepping debugger (SPEC_FULL.md §6).
package inspector

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/dkestrel/r2asm/internal/bits"
	"github.com/dkestrel/r2asm/internal/ir"
	"github.com/dkestrel/r2asm/internal/vm"
)

// View renders a CPU's final register state and non-zero memory words
// in a bordered two-panel tview layout, exiting on 'q' or Ctrl-C.
type View struct {
	app          *tview.Application
	registerView *tview.TextView
	memoryView   *tview.TextView
}

// New builds an empty View; Show fills it from a CPU and memory.
func New() *View {
	v := &View{app: tview.NewApplication()}

	v.registerView = tview.NewTextView().SetDynamicColors(true)
	v.registerView.SetBorder(true).SetTitle(" Registers ")

	v.memoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	v.memoryView.SetBorder(true).SetTitle(" Non-zero Memory ")

	return v
}

// Show populates the panels from cpu/mem and blocks until the user
// quits. It never mutates cpu or mem.
func (v *View) Show(cpu *vm.CPU, mem *vm.Memory) error {
	v.registerView.SetText(FormatRegisters(cpu))
	v.memoryView.SetText(FormatMemory(mem))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.registerView, 0, 1, false).
		AddItem(v.memoryView, 0, 2, true)

	v.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' || event.Key() == tcell.KeyCtrlC {
			v.app.Stop()
			return nil
		}
		return event
	})

	return v.app.SetRoot(layout, true).Run()
}

// FormatRegisters renders the register dump in the object format
// described in spec.md §6: signed-decimal value with hex alongside,
// PC and CPSR called out by name.
func FormatRegisters(cpu *vm.CPU) string {
	var b strings.Builder
	for n := 0; n <= 12; n++ {
		w := cpu.Registers[n]
		fmt.Fprintf(&b, "$%-2d : %d (0x%08X)\n", n, bits.ToSignedLong(w), w)
	}
	fmt.Fprintf(&b, "PC  : %d (0x%08X)\n", bits.ToSignedLong(cpu.PC()), cpu.PC())
	fmt.Fprintf(&b, "CPSR: %d (0x%08X)\n", bits.ToSignedLong(cpu.Registers[vm.CPSRIndex]), cpu.Registers[vm.CPSRIndex])
	return b.String()
}

// FormatMemory renders every non-zero word as "0x<addr>: 0x<value>".
func FormatMemory(mem *vm.Memory) string {
	var b strings.Builder
	for _, w := range mem.NonZeroWords() {
		fmt.Fprintf(&b, "0x%04X: 0x%08X\n", w.Address, w.Value)
	}
	return b.String()
}

// FormatBinaryValue renders value as 32 padded binary digits, hex, and
// signed decimal, the way the reference printer's print_value does.
func FormatBinaryValue(value uint32) string {
	return fmt.Sprintf("%s (0x%08X) (%d)", binaryDigits(value), value, bits.ToSignedLong(value))
}

func binaryDigits(value uint32) string {
	var b strings.Builder
	for i := 31; i >= 0; i-- {
		fmt.Fprintf(&b, "%d", (value>>uint(i))&1)
	}
	return b.String()
}

// FormatRegistersBinary renders every register's binary/hex/decimal form,
// one per line, for --verbose dumps.
func FormatRegistersBinary(cpu *vm.CPU) string {
	var b strings.Builder
	for n := 0; n < vm.NumRegisters; n++ {
		fmt.Fprintf(&b, "Register %2d, Value: %s\n", n, FormatBinaryValue(cpu.Registers[n]))
	}
	return b.String()
}

// FormatMemoryBinary renders every non-zero word's binary/hex/decimal form
// alongside its address, for --verbose dumps.
func FormatMemoryBinary(mem *vm.Memory) string {
	var b strings.Builder
	for _, w := range mem.NonZeroWords() {
		fmt.Fprintf(&b, "Memory Address %5d, Value: %s\n", w.Address, FormatBinaryValue(w.Value))
	}
	return b.String()
}

// FormatDecodedInstruction describes the instruction sitting in the
// pipeline's decode slot, or "None" if the slot is empty.
func FormatDecodedInstruction(inst ir.Instruction, ok bool) string {
	if !ok {
		return "Decoded Instruction: None\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Decoded Instruction: %s\n", inst.Type)
	switch inst.Type {
	case ir.ZER, ir.NUL:
	case ir.BRA:
		fmt.Fprintf(&b, "  Condition Flag: %s\n", inst.Cond)
		fmt.Fprintf(&b, "  Offset: 0x%X\n", inst.Immediate)
	case ir.DPI:
		fmt.Fprintf(&b, "  Condition Flag: %s\n", inst.Cond)
		fmt.Fprintf(&b, "  Opcode: %s\n", inst.Operation)
		fmt.Fprintf(&b, "  Immediate Value: 0x%X\n", inst.Immediate)
		fmt.Fprintf(&b, "  Destination Register: %d\n", inst.Rd)
	case ir.MUL, ir.SDT:
		fmt.Fprintf(&b, "  Condition Flag: %s\n", inst.Cond)
		fmt.Fprintf(&b, "  Immediate Value: 0x%X\n", inst.Immediate)
		fmt.Fprintf(&b, "  Destination Register: %d\n", inst.Rd)
	}
	return b.String()
}

// FormatFetchedInstruction describes the raw word sitting in the
// pipeline's fetch slot, or "None" if the slot is empty.
func FormatFetchedInstruction(word uint32, ok bool) string {
	if !ok {
		return "Fetched Instruction: None\n"
	}
	return fmt.Sprintf("Fetched Instruction, Value: %s\n", FormatBinaryValue(word))
}
