package pipeline

import "github.com/apexsim/apex/isa"

// Resolution is the outcome of trying to resolve one source operand.
type Resolution struct {
	Value int64
	Ready bool
}

// ZResolution is the outcome of trying to resolve the zero flag for a
// branch.
type ZResolution struct {
	Z     bool
	Ready bool
}

// ResolutionPolicy is consulted by Decode to resolve each source register
// and the Z flag a branch needs. Variant A (no forwarding) only consults
// the register file; Variant B (forwarding) consults the in-flight
// latches first. This is the "policy object" design note from spec §9:
// both variants share one Decode implementation parameterized by policy.
type ResolutionPolicy interface {
	ResolveReg(reg uint8, snap Snapshot) Resolution
	ResolveZ(snap Snapshot) ZResolution
}

// Snapshot is the read-only view of architectural and in-flight state a
// ResolutionPolicy needs at the moment Decode runs in a given cycle.
type Snapshot struct {
	RF   RegisterFileView
	EX2  *Latch
	MEM1 *Latch
	MEM2 *Latch
	WB   *Latch
}

// RegisterFileView is the subset of machine.RegisterFile the hazard
// policies need; kept as an interface so hazard.go has no import cycle
// concerns and unit tests can supply a fake.
type RegisterFileView interface {
	Read(r uint8) int64
	IsValid(r uint8) bool
	ZValue() bool
	ZIsValid() bool
}

// NoForwardingPolicy implements Variant A: a source is resolved only once
// its register-file validity bit is set; Z is read only when the
// register file's Z is valid.
type NoForwardingPolicy struct{}

// ResolveReg implements ResolutionPolicy.
func (NoForwardingPolicy) ResolveReg(reg uint8, snap Snapshot) Resolution {
	if !snap.RF.IsValid(reg) {
		return Resolution{Ready: false}
	}
	return Resolution{Value: snap.RF.Read(reg), Ready: true}
}

// ResolveZ implements ResolutionPolicy.
func (NoForwardingPolicy) ResolveZ(snap Snapshot) ZResolution {
	if !snap.RF.ZIsValid() {
		return ZResolution{Ready: false}
	}
	return ZResolution{Z: snap.RF.ZValue(), Ready: true}
}

// ForwardingPolicy implements Variant B: operands are bypassed from a
// later latch before falling back to the register file. Two forwarding
// paths exist, per spec §4.2:
//
//   - ALU forwarding: from MEM1, MEM2, or WB, when the producer is an
//     arithmetic/logical/MOVC instruction (result already sits in Buffer).
//   - Load forwarding: from WB only, when the producer is LOAD/LDR (the
//     loaded value isn't available any earlier than the MEM2 output).
//
// When more than one in-flight producer writes the same destination, spec
// §4.2 requires the oldest in-flight instruction (closest to retirement)
// to win, to respect program order: candidates are checked WB, then
// MEM2, then MEM1. This deliberately differs from the original source's
// `comparator()` (partb/cpu.c), which walks MEM1→MEM2→WB and returns on
// the first match — i.e. lets the *newest* in-flight producer win. See
// DESIGN.md for why the spec's program-order rule was kept over the
// source's behavior.
type ForwardingPolicy struct{}

// ResolveReg implements ResolutionPolicy.
func (ForwardingPolicy) ResolveReg(reg uint8, snap Snapshot) Resolution {
	if r, ok := aluForward(snap.WB, reg, true); ok {
		return r
	}
	if r, ok := aluForward(snap.MEM2, reg, false); ok {
		return r
	}
	if r, ok := aluForward(snap.MEM1, reg, false); ok {
		return r
	}
	if !snap.RF.IsValid(reg) {
		return Resolution{Ready: false}
	}
	return Resolution{Value: snap.RF.Read(reg), Ready: true}
}

// aluForward checks whether latch l holds a producer for reg that can
// feed a forward. allowLoad permits LOAD/LDR producers (only true for
// the WB latch, per the load-forwarding rule).
func aluForward(l *Latch, reg uint8, allowLoad bool) (Resolution, bool) {
	if l == nil || l.Inst == nil {
		return Resolution{}, false
	}
	inst := l.Inst
	if inst.Rd != reg {
		return Resolution{}, false
	}
	traits := isa.TraitsOf(inst.Op)
	if !traits.WritesRd {
		return Resolution{}, false
	}
	if traits.IsALULike {
		return Resolution{Value: l.Buffer, Ready: true}, true
	}
	if allowLoad && traits.IsLoad {
		return Resolution{Value: l.Buffer, Ready: true}, true
	}
	return Resolution{}, false
}

// ResolveZ implements ResolutionPolicy. EX2 is consulted first: if it
// still holds an arithmetic producer, that producer hasn't computed its
// result yet this cycle, and is the newest in-flight writer of Z, so
// Decode must stall rather than use a stale snapshot from MEM1/MEM2/WB.
func (ForwardingPolicy) ResolveZ(snap Snapshot) ZResolution {
	if isPendingZProducer(snap.EX2) {
		return ZResolution{Ready: false}
	}
	if z, ok := zForward(snap.MEM1); ok {
		return ZResolution{Z: z, Ready: true}
	}
	if z, ok := zForward(snap.MEM2); ok {
		return ZResolution{Z: z, Ready: true}
	}
	if z, ok := zForward(snap.WB); ok {
		return ZResolution{Z: z, Ready: true}
	}
	if !snap.RF.ZIsValid() {
		return ZResolution{Ready: false}
	}
	return ZResolution{Z: snap.RF.ZValue(), Ready: true}
}

func isPendingZProducer(l *Latch) bool {
	if l == nil || l.Inst == nil {
		return false
	}
	return isa.TraitsOf(l.Inst.Op).SetsZ
}

func zForward(l *Latch) (bool, bool) {
	if l == nil || l.Inst == nil {
		return false, false
	}
	if !isa.TraitsOf(l.Inst.Op).SetsZ {
		return false, false
	}
	return l.Buffer == 0, true
}
