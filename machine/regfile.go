// Package machine provides the APEX architectural state: the general
// purpose register file, the zero flag, data memory, and code memory.
// None of these types know anything about pipelining — they are the
// state the pipeline package reads and commits into.
package machine

// NumRegisters is the number of general-purpose integer registers.
const NumRegisters = 32

// RegisterFile holds the 32 APEX general-purpose registers plus the
// single-bit zero flag, each with a companion validity bit.
//
// A write issued by a decoded instruction marks Valid[rd] = false when the
// instruction enters EX1; WB sets Valid[rd] = true and commits the final
// value on retirement. Register 0 carries no special hard-wired semantics
// (spec §3).
type RegisterFile struct {
	Regs  [NumRegisters]int64
	Valid [NumRegisters]bool

	Z      bool
	ZValid bool
}

// NewRegisterFile returns a register file with every register and the
// zero flag marked valid (no writes in flight).
func NewRegisterFile() *RegisterFile {
	rf := &RegisterFile{}
	rf.Reset()
	return rf
}

// Reset restores the register file to its power-on state: all registers
// zero and valid, zero flag clear and valid.
func (rf *RegisterFile) Reset() {
	for i := range rf.Regs {
		rf.Regs[i] = 0
		rf.Valid[i] = true
	}
	rf.Z = false
	rf.ZValid = true
}

// Read returns the current value of register r. It does not consult the
// validity bit — callers that must respect RAW hazards check Valid
// themselves (or go through a pipeline forwarding policy).
func (rf *RegisterFile) Read(r uint8) int64 {
	if int(r) >= NumRegisters {
		return 0
	}
	return rf.Regs[r]
}

// InvalidateReg clears the validity bit for r. Called by EX1 when an
// instruction that writes r enters the stage (spec invariant I2).
func (rf *RegisterFile) InvalidateReg(r uint8) {
	if int(r) >= NumRegisters {
		return
	}
	rf.Valid[r] = false
}

// CommitReg writes value into register r and marks it valid again.
// Called only by WB.
func (rf *RegisterFile) CommitReg(r uint8, value int64) {
	if int(r) >= NumRegisters {
		return
	}
	rf.Regs[r] = value
	rf.Valid[r] = true
}

// InvalidateZ clears the zero-flag validity bit. Called by EX1 when an
// arithmetic instruction that sets Z enters the stage.
func (rf *RegisterFile) InvalidateZ() {
	rf.ZValid = false
}

// CommitZ sets the zero flag from a retiring arithmetic result and marks
// it valid again. Called only by WB.
func (rf *RegisterFile) CommitZ(result int64) {
	rf.Z = result == 0
	rf.ZValid = true
}
