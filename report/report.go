// Package report formats simulator output: the per-cycle pipeline trace
// for "display" mode, and the end-of-run register/memory tables both modes
// print (spec §6, Output format).
package report

import (
	"fmt"
	"io"

	"github.com/apexsim/apex/core"
	"github.com/apexsim/apex/pipeline"
)

// Cycle writes one "Clock Cycle #: N" block followed by one line per
// pipeline stage, in fetch-to-retirement order.
func Cycle(w io.Writer, engine *pipeline.Engine, clock uint64) {
	fmt.Fprintf(w, "Clock Cycle #: %d\n", clock)
	for _, stage := range pipeline.Stages {
		inst := engine.Inst(stage)
		if inst == nil {
			fmt.Fprintf(w, "%s : --EMPTY--\n", stage)
			continue
		}
		fmt.Fprintf(w, "%s : pc(%d) %s\n", stage, inst.PC, inst)
	}
	fmt.Fprintln(w)
}

// FinalState writes the end-of-run register table and data-memory table.
func FinalState(w io.Writer, c *core.Core, registersShown, memoryCellsShown int) {
	WriteRegisters(w, c, registersShown)
	fmt.Fprintln(w)
	WriteMemory(w, c, memoryCellsShown)
}

// WriteRegisters writes the register table: one row per register, its
// value, and Valid|Invalid status.
func WriteRegisters(w io.Writer, c *core.Core, count int) {
	rf := c.Registers()
	fmt.Fprintln(w, "============ STATE OF ARCHITECTURAL REGISTER FILE ============")
	for r := 0; r < count; r++ {
		status := "Invalid"
		if rf.Valid[r] {
			status = "Valid"
		}
		fmt.Fprintf(w, "| REG[%2d] | Value = %-10d | Status = %s |\n", r, rf.Regs[r], status)
	}
}

// WriteMemory writes the first count cells of data memory.
func WriteMemory(w io.Writer, c *core.Core, count int) {
	cells := c.Memory().Snapshot(count)
	fmt.Fprintln(w, "============ STATE OF DATA MEMORY ============")
	for addr, value := range cells {
		fmt.Fprintf(w, "| MEM[%4d] | Data Value = %d |\n", addr, value)
	}
}

// Summary writes the cumulative run statistics, purely diagnostic output
// beyond what spec §6 mandates.
func Summary(w io.Writer, c *core.Core) {
	s := c.Stats()
	fmt.Fprintf(w, "Cycles: %d  Instructions: %d  CPI: %.3f  Stalls: %d  Branches: %d  Flushes: %d\n",
		s.Cycles, s.Instructions, s.CPI(), s.Stalls, s.Branches, s.Flushes)
}
