package pipeline

import (
	"github.com/apexsim/apex/isa"
	"github.com/apexsim/apex/machine"
)

// Variant selects which hazard-resolution policy Decode uses.
type Variant int

const (
	// VariantNoForwarding resolves hazards purely by stalling until the
	// producing instruction retires (spec §1, Variant A).
	VariantNoForwarding Variant = iota
	// VariantForwarding bypasses operands from later latches to reduce
	// stalls (spec §1, Variant B).
	VariantForwarding
)

func policyFor(v Variant) ResolutionPolicy {
	if v == VariantForwarding {
		return ForwardingPolicy{}
	}
	return NoForwardingPolicy{}
}

// Stats holds cumulative counters for a run, purely diagnostic — not
// required by any spec invariant but printed in display mode.
type Stats struct {
	Cycles       uint64
	Instructions uint64
	Stalls       uint64
	Branches     uint64
	Flushes      uint64
}

// CPI returns cycles-per-instruction, or 0 if no instructions retired.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Engine is the APEX 7-stage pipeline: the eight latches (F, DRF, EX1,
// EX2, MEM1, MEM2, WB, plus the implicit retirement slot), the PC, and
// the clock. It drives Variant A or Variant B hazard resolution depending
// on the ResolutionPolicy it was built with.
type Engine struct {
	f, drf, ex1, ex2, mem1, mem2, wb Latch

	policy  ResolutionPolicy
	regs    *machine.RegisterFile
	data    *machine.DataMemory
	code    *machine.CodeMemory

	pc      uint64
	clock   uint64

	halted     bool
	haltFetch  bool // freeze once HALT has passed Decode; lifted if a taken branch/jump squashes that HALT
	squashOne  bool // one-cycle freeze the cycle a taken branch/jump is resolved

	stats Stats
}

// NewEngine builds a pipeline engine over the given architectural state.
func NewEngine(variant Variant, regs *machine.RegisterFile, data *machine.DataMemory, code *machine.CodeMemory) *Engine {
	return &Engine{
		policy: policyFor(variant),
		regs:   regs,
		data:   data,
		code:   code,
	}
}

// SetPC sets the fetch program counter (typically a machine.CodeMemory's
// BaseAddress()).
func (e *Engine) SetPC(pc uint64) {
	e.pc = pc
}

// PC returns the current fetch program counter.
func (e *Engine) PC() uint64 {
	return e.pc
}

// Halted reports whether HALT has retired.
func (e *Engine) Halted() bool {
	return e.halted
}

// Clock returns the number of cycles simulated so far.
func (e *Engine) Clock() uint64 {
	return e.clock
}

// Stats returns the cumulative pipeline statistics.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.Cycles = e.clock
	return s
}

// StageName identifies one of the seven pipeline stages, in fetch-to-
// retirement order, for reporting.
type StageName int

const (
	StageFetch StageName = iota
	StageDecode
	StageExecute1
	StageExecute2
	StageMemory1
	StageMemory2
	StageWriteback
)

// String renders the stage name the way the per-cycle trace prints it.
func (s StageName) String() string {
	switch s {
	case StageFetch:
		return "Fetch"
	case StageDecode:
		return "Decode/RF"
	case StageExecute1:
		return "Execute1"
	case StageExecute2:
		return "Execute2"
	case StageMemory1:
		return "Memory1"
	case StageMemory2:
		return "Memory2"
	case StageWriteback:
		return "Writeback"
	default:
		return "Unknown"
	}
}

// Stages lists every StageName in fetch-to-retirement order.
var Stages = []StageName{StageFetch, StageDecode, StageExecute1, StageExecute2, StageMemory1, StageMemory2, StageWriteback}

// Inst returns the instruction currently occupying the named stage's latch,
// or nil if it is a bubble. Used by package report to render the per-cycle
// trace.
func (e *Engine) Inst(s StageName) *isa.Instruction {
	switch s {
	case StageFetch:
		return e.f.Inst
	case StageDecode:
		return e.drf.Inst
	case StageExecute1:
		return e.ex1.Inst
	case StageExecute2:
		return e.ex2.Inst
	case StageMemory1:
		return e.mem1.Inst
	case StageMemory2:
		return e.mem2.Inst
	case StageWriteback:
		return e.wb.Inst
	default:
		return nil
	}
}

// Reset clears every latch, counter and the PC, so one Engine can be
// reused across scenario runs. It does not touch the register file or
// data memory; call SetPC again before reusing.
func (e *Engine) Reset() {
	*e = Engine{policy: e.policy, regs: e.regs, data: e.data, code: e.code}
}

// Run executes cycles until HALT retires. maxCycles bounds the run; 0
// means unbounded (run until HALT, matching spec §6's CLI contract where
// cycle_count defaults to unbounded).
func (e *Engine) Run(maxCycles uint64) {
	for !e.halted {
		if maxCycles != 0 && e.clock >= maxCycles {
			return
		}
		e.Tick()
	}
}

// Tick advances the pipeline by exactly one clock cycle, processing the
// seven stages back-to-front (WB → MEM2 → MEM1 → EX2 → EX1 → DRF → F) so
// that each stage observes a state its consumer has already drained this
// cycle, per spec §2 and §5.
func (e *Engine) Tick() {
	if e.halted {
		return
	}
	e.clock++

	e.doWriteback()
	e.doMemory2()
	e.doMemory1()
	e.doExecute2()
	e.doExecute1()
	e.doDecode()
	e.doFetch()
}

// doWriteback commits the instruction currently in WB to architectural
// state (spec §4.6). It does not clear the WB latch: doMemory2 overwrites
// it with the next arrival a few steps later in this same cycle.
func (e *Engine) doWriteback() {
	if e.wb.Empty() {
		return
	}
	inst := e.wb.Inst
	traits := isa.TraitsOf(inst.Op)

	if traits.WritesRd {
		e.regs.CommitReg(inst.Rd, e.wb.Buffer)
	}
	if traits.SetsZ {
		e.regs.CommitZ(e.wb.Buffer)
	}
	if traits.IsHalt {
		e.halted = true
	}
	e.stats.Instructions++
}

// doMemory2 performs the MEM2 load/store access (spec §4.5) and ships the
// result into the WB latch.
func (e *Engine) doMemory2() {
	cur := e.mem2
	if cur.Empty() {
		e.wb.Clear()
		e.wb.Busy = true
		return
	}

	buffer := cur.Buffer
	if cur.Inst.Op == isa.OpLOAD || cur.Inst.Op == isa.OpLDR || cur.Inst.Op == isa.OpSTORE || cur.Inst.Op == isa.OpSTR {
		buffer = accessMemory2(cur.Inst, cur.MemAddress, cur.Rs1Value, memoryAdapter{e.data})
	}

	e.wb = Latch{Inst: cur.Inst, Buffer: buffer, MemAddress: cur.MemAddress}
}

// doMemory1 is a latch-only stage (spec §4.5: "matches the two-cycle
// memory latency"); it just shifts EX2's output one stage further.
func (e *Engine) doMemory1() {
	cur := e.mem1
	if cur.Empty() {
		e.mem2.Clear()
		e.mem2.Busy = true
		return
	}
	e.mem2 = cur
	e.mem2.Busy = false
}

// doExecute2 resolves the ALU/address/control-transfer computation for
// the instruction in EX2 (spec §4.4) and ships its result into MEM1. A
// taken branch/jump/HALT redirects Fetch by setting e.pc/e.squashOne/
// e.haltFetch directly; doFetch consults that state rather than a return
// value.
func (e *Engine) doExecute2() {
	cur := e.ex2
	if cur.Empty() {
		e.mem1.Clear()
		e.mem1.Busy = true
		return
	}

	res := computeExecute2(cur.Inst, cur.Rs1Value, cur.Rs2Value, cur.Rs3Value, cur.Z)

	e.mem1 = Latch{
		Inst:       cur.Inst,
		Rs1Value:   cur.Rs1Value,
		Rs2Value:   cur.Rs2Value,
		Rs3Value:   cur.Rs3Value,
		Buffer:     res.Buffer,
		MemAddress: res.MemAddress,
	}

	traits := isa.TraitsOf(cur.Inst.Op)
	if traits.IsBranch || traits.IsJump {
		e.stats.Branches++
	}

	if res.IsHalt {
		e.stats.Flushes++
		e.squashFEX1AndDRF()
		e.haltFetch = true
		return
	}

	if res.BranchTaken {
		e.stats.Flushes++
		e.squashFEX1AndDRF()
		e.pc = res.BranchTarget
		e.squashOne = true
		// Any HALT that already passed Decode is younger than this branch
		// and was just squashed, so its fetch freeze no longer applies.
		e.haltFetch = false
	}
}

// squashFEX1AndDRF implements the mis-speculation recovery in spec §4.4:
// zero F, DRF and EX1. MEM1 and beyond are left untouched — they retire
// normally.
func (e *Engine) squashFEX1AndDRF() {
	e.f.Clear()
	e.drf.Clear()
	e.ex1.Clear()
}

// doExecute1 is the pass-through stage from spec §4.3: it invalidates the
// destination register (and Z, for flag-setting ops) as the instruction
// enters execution, then ships the latch into EX2 unchanged.
func (e *Engine) doExecute1() {
	cur := e.ex1
	if cur.Empty() {
		e.ex2.Clear()
		e.ex2.Busy = true
		return
	}

	traits := isa.TraitsOf(cur.Inst.Op)
	if traits.WritesRd {
		e.regs.InvalidateReg(cur.Inst.Rd)
	}
	if traits.SetsZ {
		e.regs.InvalidateZ()
	}

	e.ex2 = cur
	e.ex2.Busy = false
}

// doDecode is the hazard engine: it resolves every source operand the
// instruction in DRF declares, stalling Fetch if any cannot yet be
// resolved (spec §4.2).
func (e *Engine) doDecode() {
	cur := e.drf
	if cur.Empty() {
		e.ex1.Clear()
		e.ex1.Busy = true
		e.f.Stalled = false
		return
	}

	inst := cur.Inst
	traits := isa.TraitsOf(inst.Op)

	snap := Snapshot{RF: regFileView{e.regs}, EX2: &e.ex2, MEM1: &e.mem1, MEM2: &e.mem2, WB: &e.wb}

	var rs1, rs2, rs3 Resolution
	ready := true

	if traits.NeedsRs1 {
		rs1 = e.policy.ResolveReg(inst.Rs1, snap)
		ready = ready && rs1.Ready
	}
	if traits.NeedsRs2 {
		rs2 = e.policy.ResolveReg(inst.Rs2, snap)
		ready = ready && rs2.Ready
	}
	if traits.NeedsRs3 {
		rs3 = e.policy.ResolveReg(inst.Rs3, snap)
		ready = ready && rs3.Ready
	}

	var zRes ZResolution
	if traits.NeedsZ {
		zRes = e.policy.ResolveZ(snap)
		ready = ready && zRes.Ready
	}

	if !ready {
		e.f.Stalled = true
		e.stats.Stalls++
		e.ex1.Clear()
		e.ex1.Busy = true
		return
	}

	e.f.Stalled = false
	e.ex1 = Latch{
		Inst:     inst,
		Rs1Value: rs1.Value,
		Rs2Value: rs2.Value,
		Rs3Value: rs3.Value,
		Z:        zRes.Z,
		ZValid:   zRes.Ready,
	}
	// DRF's content has now advanced into EX1; clear it so a frozen
	// Fetch (squash or HALT) never reprocesses it next cycle.
	e.drf.Clear()

	if traits.IsHalt {
		e.haltFetch = true
	}
}

// doFetch reads code memory at PC into F, then — unless stalled or
// frozen — copies F into DRF and advances PC by 4 (spec §4.1). A taken
// branch/jump/HALT this cycle is already reflected in e.pc, e.squashOne
// and e.haltFetch by doExecute2, so doFetch needs no branch-state of its
// own to redirect or freeze.
func (e *Engine) doFetch() {
	if e.haltFetch {
		e.f.Clear()
		e.f.Busy = true
		return
	}
	if e.squashOne {
		e.squashOne = false
		e.f.Clear()
		e.f.Busy = true
		return
	}
	if e.f.Stalled {
		// Latch contents frozen; DRF already retained its own content in
		// doDecode, so F must not overwrite it.
		return
	}

	inst, ok := e.code.At(e.pc)
	if !ok {
		e.f.Clear()
		e.f.Busy = true
		e.drf.Clear()
		e.drf.Busy = true
		return
	}

	e.f = Latch{Inst: &inst}
	e.drf = e.f
	e.pc += machine.InstructionSize
}

// memoryAdapter adapts *machine.DataMemory to the dataMemory interface
// stages.go consumes.
type memoryAdapter struct {
	mem *machine.DataMemory
}

func (m memoryAdapter) Read(addr int64) int64 {
	return m.mem.Read(addr)
}

func (m memoryAdapter) Write(addr int64, value int64) {
	m.mem.Write(addr, value)
}

// regFileView adapts *machine.RegisterFile to the RegisterFileView
// hazard.go consumes.
type regFileView struct {
	rf *machine.RegisterFile
}

func (v regFileView) Read(r uint8) int64   { return v.rf.Read(r) }
func (v regFileView) IsValid(r uint8) bool { return v.rf.Valid[r] }
func (v regFileView) ZValue() bool         { return v.rf.Z }
func (v regFileView) ZIsValid() bool       { return v.rf.ZValid }
