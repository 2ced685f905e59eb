// Package pipeline implements the APEX 7-stage in-order pipeline engine:
// the stage latches, the Decode-stage hazard/forwarding policies for both
// the no-forwarding and forwarding variants, the EX1/EX2/MEM1/MEM2/WB
// stage bodies, and the cycle-by-cycle driver that advances them all.
package pipeline

import "github.com/apexsim/apex/isa"

// Latch is the storage between two adjacent pipeline stages. It carries a
// decoded instruction record (nil when the latch is a bubble) plus the
// scratch fields spec §3 assigns to every latch.
type Latch struct {
	Inst *isa.Instruction

	Rs1Value, Rs2Value, Rs3Value int64
	Buffer                       int64
	MemAddress                   int64

	// Z and ZValid are a private snapshot used by branch instructions,
	// distinct from the architectural Z/ZValid in the register file.
	Z      bool
	ZValid bool

	// Busy means the stage holds no valid work this cycle.
	Busy bool
	// Stalled means the stage is frozen this cycle (its latch must not
	// be overwritten).
	Stalled bool
}

// Clear resets the latch to an empty bubble. Busy/Stalled are left to the
// caller since they are driven by stage control logic, not instruction
// content.
func (l *Latch) Clear() {
	l.Inst = nil
	l.Rs1Value, l.Rs2Value, l.Rs3Value = 0, 0, 0
	l.Buffer = 0
	l.MemAddress = 0
	l.Z = false
	l.ZValid = false
}

// Empty reports whether the latch holds no instruction (a bubble).
func (l *Latch) Empty() bool {
	return l.Inst == nil
}
