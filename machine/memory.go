package machine

import "github.com/apexsim/apex/isa"

// DefaultDataMemorySize is the number of integer-addressed data memory
// cells used when the configuration doesn't override it. 4000 entries
// comfortably covers the APEX test programs this simulator targets
// (spec §2).
const DefaultDataMemorySize = 4000

// DataMemory is the flat, integer-addressed data memory. It is read and
// written only by MEM2 (spec §5). Its size is set once at construction,
// from config.Config.DataMemorySize (spec §9's implementation-defined
// knob), and never changes afterward.
type DataMemory struct {
	cells []int64
}

// NewDataMemory returns a zeroed data memory of the given size. A size
// <= 0 falls back to DefaultDataMemorySize.
func NewDataMemory(size int) *DataMemory {
	if size <= 0 {
		size = DefaultDataMemorySize
	}
	return &DataMemory{cells: make([]int64, size)}
}

// Size returns the number of cells this data memory holds.
func (m *DataMemory) Size() int {
	return len(m.cells)
}

// Reset zeroes every cell in place.
func (m *DataMemory) Reset() {
	for i := range m.cells {
		m.cells[i] = 0
	}
}

// Read returns the value at addr. An out-of-range address is undefined
// behaviour per spec §7; this implementation returns 0 rather than
// panicking, since the spec leaves the trap behaviour to the
// implementation and a teaching simulator should not crash on a bad
// program.
func (m *DataMemory) Read(addr int64) int64 {
	if addr < 0 || addr >= int64(len(m.cells)) {
		return 0
	}
	return m.cells[addr]
}

// Write stores value at addr. Out-of-range writes are silently dropped;
// see Read.
func (m *DataMemory) Write(addr int64, value int64) {
	if addr < 0 || addr >= int64(len(m.cells)) {
		return
	}
	m.cells[addr] = value
}

// Snapshot returns the first n cells, for end-of-run reporting (spec §6:
// "first 100 entries").
func (m *DataMemory) Snapshot(n int) []int64 {
	if n > len(m.cells) {
		n = len(m.cells)
	}
	out := make([]int64, n)
	copy(out, m.cells[:n])
	return out
}

// DefaultCodeBaseAddress is the PC of the first instruction when the
// configuration doesn't override it (spec §6).
const DefaultCodeBaseAddress = 4000

// InstructionSize is the number of PC units each instruction occupies.
const InstructionSize = 4

// CodeMemory is the immutable, address-indexed instruction store built
// once at startup by the assembler (package asm) and never mutated
// afterward — spec §9 calls out that code_memory_size must stay immutable
// after load even across taken branches.
type CodeMemory struct {
	instructions []isa.Instruction
	baseAddress  uint64
}

// NewCodeMemory builds a CodeMemory from an ordered instruction sequence,
// assigning PCs starting at baseAddress.
func NewCodeMemory(instructions []isa.Instruction, baseAddress uint64) *CodeMemory {
	cm := &CodeMemory{instructions: instructions, baseAddress: baseAddress}
	for i := range cm.instructions {
		cm.instructions[i].PC = baseAddress + uint64(i*InstructionSize)
	}
	return cm
}

// BaseAddress returns the PC assigned to the first instruction.
func (c *CodeMemory) BaseAddress() uint64 {
	return c.baseAddress
}

// Size returns the number of instructions loaded.
func (c *CodeMemory) Size() int {
	return len(c.instructions)
}

// At returns the instruction whose PC is addr, and whether addr is
// in range. PCs that do not fall on an instruction boundary (addr not a
// multiple of InstructionSize past baseAddress) also report !ok.
func (c *CodeMemory) At(addr uint64) (isa.Instruction, bool) {
	if addr < c.baseAddress {
		return isa.Instruction{}, false
	}
	offset := addr - c.baseAddress
	if offset%InstructionSize != 0 {
		return isa.Instruction{}, false
	}
	idx := int(offset / InstructionSize)
	if idx < 0 || idx >= len(c.instructions) {
		return isa.Instruction{}, false
	}
	return c.instructions[idx], true
}
