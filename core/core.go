// Package core provides the cycle-accurate APEX core model. It wraps the
// pipeline implementation to provide a high-level interface: own the
// architectural state, drive the engine, report statistics.
package core

import (
	"github.com/apexsim/apex/asm"
	"github.com/apexsim/apex/config"
	"github.com/apexsim/apex/machine"
	"github.com/apexsim/apex/pipeline"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of stall cycles.
	Stalls uint64
	// Branches is the number of branch/jump instructions resolved.
	Branches uint64
	// Flushes is the number of pipeline flushes (taken branches/jumps/HALT).
	Flushes uint64
}

// CPI returns cycles-per-instruction, or 0 if no instructions retired.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core represents a cycle-accurate APEX CPU core: the 7-stage pipeline plus
// the architectural state (registers, data memory, code memory) it reads
// and commits into.
type Core struct {
	// Engine is the underlying 7-stage pipeline.
	Engine *pipeline.Engine

	regs        *machine.RegisterFile
	data        *machine.DataMemory
	code        *machine.CodeMemory
	baseAddress uint64
}

// New builds a Core for the given program, ready to run from
// cfg.CodeBaseAddress. A nil cfg falls back to config.Default().
func New(variant pipeline.Variant, program *asm.Program, cfg *config.Config) *Core {
	if cfg == nil {
		cfg = config.Default()
	}

	baseAddress := uint64(cfg.CodeBaseAddress)
	regs := machine.NewRegisterFile()
	data := machine.NewDataMemory(cfg.DataMemorySize)
	code := machine.NewCodeMemory(program.Instructions, baseAddress)

	engine := pipeline.NewEngine(variant, regs, data, code)
	engine.SetPC(baseAddress)

	return &Core{Engine: engine, regs: regs, data: data, code: code, baseAddress: baseAddress}
}

// Registers returns the architectural register file, for reporting.
func (c *Core) Registers() *machine.RegisterFile {
	return c.regs
}

// Memory returns the architectural data memory, for reporting.
func (c *Core) Memory() *machine.DataMemory {
	return c.data
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() {
	c.Engine.Tick()
}

// Halted reports whether HALT has retired.
func (c *Core) Halted() bool {
	return c.Engine.Halted()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	s := c.Engine.Stats()
	return Stats{
		Cycles:       s.Cycles,
		Instructions: s.Instructions,
		Stalls:       s.Stalls,
		Branches:     s.Branches,
		Flushes:      s.Flushes,
	}
}

// Run executes the core until HALT retires, or maxCycles is reached (0
// means unbounded).
func (c *Core) Run(maxCycles uint64) {
	c.Engine.Run(maxCycles)
}

// RunCycles executes exactly cycles additional ticks, stopping early if
// HALT retires first. It returns true if the core is still running
// afterward, false if it halted.
func (c *Core) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !c.Halted(); i++ {
		c.Tick()
	}
	return !c.Halted()
}

// Reset restores the core to its power-on state: registers and data
// memory cleared, the pipeline engine's latches and clock cleared, and PC
// rewound to the code's base address. Code memory (the assembled
// program) is untouched.
func (c *Core) Reset() {
	c.regs.Reset()
	c.data.Reset()
	c.Engine.Reset()
	c.Engine.SetPC(c.baseAddress)
}
