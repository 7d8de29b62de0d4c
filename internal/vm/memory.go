package vm

import "fmt"

// NumAddresses is the size of the flat memory buffer in bytes.
const NumAddresses = 65536

// Memory is the emulator's contiguous, zero-initialized byte buffer.
// Strict governs what happens on an out-of-bounds access: compliant mode
// (the default, matching original behavior) logs a diagnostic and skips
// the access, while strict mode returns an error. Threading this through
// the Memory value rather than a package-level global lets multiple VMs
// run with independent policies in the same process.
type Memory struct {
	bytes  [NumAddresses]byte
	Strict bool

	Diagnostics []string
}

// NewMemory returns a zeroed Memory buffer.
func NewMemory(strict bool) *Memory {
	return &Memory{Strict: strict}
}

// Reset zeroes every byte.
func (m *Memory) Reset() {
	for i := range m.bytes {
		m.bytes[i] = 0
	}
	m.Diagnostics = nil
}

// LoadWords writes a little-endian word stream starting at address 0,
// matching the object-code format's "address 4k = word k" convention.
func (m *Memory) LoadWords(words []uint32) error {
	for i, w := range words {
		if err := m.WriteWord(uint32(i)*4, w); err != nil {
			return err
		}
	}
	return nil
}

func inBounds(addr uint32) bool {
	return addr <= NumAddresses-4
}

// ReadWord reads a little-endian word at addr. An out-of-bounds access
// in compliant mode logs a diagnostic and returns 0, nil; in strict mode
// it returns an error.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if !inBounds(addr) {
		return 0, m.outOfBounds("read", addr)
	}
	return uint32(m.bytes[addr]) |
		uint32(m.bytes[addr+1])<<8 |
		uint32(m.bytes[addr+2])<<16 |
		uint32(m.bytes[addr+3])<<24, nil
}

// WriteWord writes value little-endian at addr, subject to the same
// bounds policy as ReadWord.
func (m *Memory) WriteWord(addr uint32, value uint32) error {
	if !inBounds(addr) {
		return m.outOfBounds("write", addr)
	}
	m.bytes[addr] = byte(value)
	m.bytes[addr+1] = byte(value >> 8)
	m.bytes[addr+2] = byte(value >> 16)
	m.bytes[addr+3] = byte(value >> 24)
	return nil
}

func (m *Memory) outOfBounds(op string, addr uint32) error {
	if m.Strict {
		return fmt.Errorf("vm: %s out of bounds at address 0x%X", op, addr)
	}
	m.Diagnostics = append(m.Diagnostics, fmt.Sprintf("Error: Out of bounds memory access at address 0x%08X", addr))
	return nil
}

// Word pairs a word-aligned address with its stored value.
type Word struct {
	Address uint32
	Value   uint32
}

// NonZeroWords returns every word-aligned address holding a non-zero
// value, in ascending order, for the post-halt memory dump.
func (m *Memory) NonZeroWords() []Word {
	var words []Word
	for addr := uint32(0); addr+4 <= NumAddresses; addr += 4 {
		v, _ := m.ReadWord(addr)
		if v != 0 {
			words = append(words, Word{Address: addr, Value: v})
		}
	}
	return words
}
