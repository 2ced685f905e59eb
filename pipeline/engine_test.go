package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexsim/apex/isa"
	"github.com/apexsim/apex/machine"
	"github.com/apexsim/apex/pipeline"
)

// buildEngine assembles insts into a fresh engine ready to run from
// machine.DefaultCodeBaseAddress, for both hazard-resolution variants.
func buildEngine(variant pipeline.Variant, insts []isa.Instruction) (*pipeline.Engine, *machine.RegisterFile, *machine.DataMemory) {
	regs := machine.NewRegisterFile()
	data := machine.NewDataMemory(machine.DefaultDataMemorySize)
	code := machine.NewCodeMemory(insts, machine.DefaultCodeBaseAddress)
	engine := pipeline.NewEngine(variant, regs, data, code)
	engine.SetPC(machine.DefaultCodeBaseAddress)
	return engine, regs, data
}

func runToHalt(e *pipeline.Engine, maxCycles uint64) {
	e.Run(maxCycles)
}

var _ = Describe("Engine end-to-end scenarios", func() {
	for _, variant := range []pipeline.Variant{pipeline.VariantNoForwarding, pipeline.VariantForwarding} {
		variant := variant

		Context(variantName(variant), func() {
			It("resolves a RAW hazard through MOVC -> ADDL -> HALT", func() {
				engine, regs, _ := buildEngine(variant, []isa.Instruction{
					{Op: isa.OpMOVC, Rd: 1, Imm: 10},
					{Op: isa.OpADDL, Rd: 2, Rs1: 1, Imm: 5},
					{Op: isa.OpHALT},
				})
				runToHalt(engine, 100)

				Expect(engine.Halted()).To(BeTrue())
				Expect(regs.Read(1)).To(Equal(int64(10)))
				Expect(regs.Read(2)).To(Equal(int64(15)))
			})

			It("squashes the instruction after a taken branch", func() {
				engine, regs, _ := buildEngine(variant, []isa.Instruction{
					{Op: isa.OpMOVC, Rd: 1, Imm: 0},
					{Op: isa.OpSUBL, Rd: 2, Rs1: 1, Imm: 0},
					{Op: isa.OpBZ, Imm: 8},
					{Op: isa.OpMOVC, Rd: 3, Imm: 99},
					{Op: isa.OpMOVC, Rd: 4, Imm: 7},
					{Op: isa.OpHALT},
				})
				runToHalt(engine, 100)

				Expect(regs.Read(3)).To(Equal(int64(0)))
				Expect(regs.Read(4)).To(Equal(int64(7)))
				Expect(regs.Z).To(BeTrue())
			})

			It("stores and loads a value through data memory", func() {
				engine, regs, data := buildEngine(variant, []isa.Instruction{
					{Op: isa.OpMOVC, Rd: 1, Imm: 42},
					{Op: isa.OpMOVC, Rd: 2, Imm: 0},
					{Op: isa.OpSTORE, Rs1: 1, Rs2: 2, Imm: 20},
					{Op: isa.OpLOAD, Rd: 3, Rs1: 2, Imm: 20},
					{Op: isa.OpHALT},
				})
				runToHalt(engine, 100)

				Expect(regs.Read(3)).To(Equal(int64(42)))
				Expect(data.Read(20)).To(Equal(int64(42)))
			})

			It("squashes the instruction after a taken jump", func() {
				// R1 is loaded with the PC of the MOVC R3 instruction
				// (DefaultCodeBaseAddress + 3*InstructionSize), so JUMP skips
				// over the intervening MOVC R2 entirely.
				engine, regs, _ := buildEngine(variant, []isa.Instruction{
					{Op: isa.OpMOVC, Rd: 1, Imm: int32(machine.DefaultCodeBaseAddress + 3*machine.InstructionSize)},
					{Op: isa.OpJUMP, Rs1: 1, Imm: 0},
					{Op: isa.OpMOVC, Rd: 2, Imm: 1},
					{Op: isa.OpMOVC, Rd: 3, Imm: 2},
					{Op: isa.OpHALT},
				})
				runToHalt(engine, 100)

				Expect(regs.Read(2)).To(Equal(int64(0)))
				Expect(regs.Read(3)).To(Equal(int64(2)))
			})

			It("computes a MUL and clears Z when the result is non-zero", func() {
				engine, regs, _ := buildEngine(variant, []isa.Instruction{
					{Op: isa.OpMOVC, Rd: 1, Imm: 3},
					{Op: isa.OpMOVC, Rd: 2, Imm: 4},
					{Op: isa.OpMUL, Rd: 3, Rs1: 1, Rs2: 2},
					{Op: isa.OpHALT},
				})
				runToHalt(engine, 100)

				Expect(regs.Read(3)).To(Equal(int64(12)))
				Expect(regs.Z).To(BeFalse())
			})

			It("never retires an instruction fetched after HALT", func() {
				engine, regs, _ := buildEngine(variant, []isa.Instruction{
					{Op: isa.OpMOVC, Rd: 1, Imm: 1},
					{Op: isa.OpHALT},
					{Op: isa.OpMOVC, Rd: 2, Imm: 2},
				})
				runToHalt(engine, 100)

				Expect(regs.Read(1)).To(Equal(int64(1)))
				Expect(regs.Read(2)).To(Equal(int64(0)))
			})
		})
	}

	It("stalls strictly more in Variant A than Variant B for a tight RAW chain", func() {
		insts := func() []isa.Instruction {
			return []isa.Instruction{
				{Op: isa.OpMOVC, Rd: 1, Imm: 10},
				{Op: isa.OpADDL, Rd: 2, Rs1: 1, Imm: 5},
				{Op: isa.OpHALT},
			}
		}

		a, _, _ := buildEngine(pipeline.VariantNoForwarding, insts())
		runToHalt(a, 100)

		b, _, _ := buildEngine(pipeline.VariantForwarding, insts())
		runToHalt(b, 100)

		Expect(a.Stats().Stalls).To(BeNumerically(">", b.Stats().Stalls))
	})

	It("never double-commits a register between two Tick calls", func() {
		engine, regs, _ := buildEngine(pipeline.VariantForwarding, []isa.Instruction{
			{Op: isa.OpMOVC, Rd: 1, Imm: 1},
			{Op: isa.OpMOVC, Rd: 1, Imm: 2},
			{Op: isa.OpHALT},
		})
		runToHalt(engine, 100)
		Expect(regs.Read(1)).To(Equal(int64(2)))
		Expect(regs.Valid[1]).To(BeTrue())
	})

	It("is deterministic across repeated runs", func() {
		insts := []isa.Instruction{
			{Op: isa.OpMOVC, Rd: 1, Imm: 3},
			{Op: isa.OpMOVC, Rd: 2, Imm: 4},
			{Op: isa.OpMUL, Rd: 3, Rs1: 1, Rs2: 2},
			{Op: isa.OpHALT},
		}

		first, firstRegs, _ := buildEngine(pipeline.VariantForwarding, insts)
		runToHalt(first, 100)

		second, secondRegs, _ := buildEngine(pipeline.VariantForwarding, insts)
		runToHalt(second, 100)

		Expect(firstRegs.Regs).To(Equal(secondRegs.Regs))
		Expect(first.Stats()).To(Equal(second.Stats()))
	})
})

func variantName(v pipeline.Variant) string {
	if v == pipeline.VariantForwarding {
		return "Variant B (forwarding)"
	}
	return "Variant A (no forwarding)"
}
