package pipeline

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexsim/apex/isa"
)

type fakeMemory struct {
	cells map[int64]int64
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{cells: map[int64]int64{}}
}

func (m *fakeMemory) Read(addr int64) int64 {
	return m.cells[addr]
}

func (m *fakeMemory) Write(addr int64, value int64) {
	m.cells[addr] = value
}

var _ = Describe("computeExecute2", func() {
	It("computes MOVC as a pass-through immediate", func() {
		res := computeExecute2(&isa.Instruction{Op: isa.OpMOVC, Imm: 7}, 0, 0, 0, false)
		Expect(res.Buffer).To(Equal(int64(7)))
	})

	It("computes ADD, SUB and MUL", func() {
		Expect(computeExecute2(&isa.Instruction{Op: isa.OpADD}, 3, 4, 0, false).Buffer).To(Equal(int64(7)))
		Expect(computeExecute2(&isa.Instruction{Op: isa.OpSUB}, 10, 4, 0, false).Buffer).To(Equal(int64(6)))
		Expect(computeExecute2(&isa.Instruction{Op: isa.OpMUL}, 3, 4, 0, false).Buffer).To(Equal(int64(12)))
	})

	It("computes ADDL/SUBL against the immediate", func() {
		Expect(computeExecute2(&isa.Instruction{Op: isa.OpADDL, Imm: 5}, 10, 0, 0, false).Buffer).To(Equal(int64(15)))
		Expect(computeExecute2(&isa.Instruction{Op: isa.OpSUBL, Imm: 5}, 10, 0, 0, false).Buffer).To(Equal(int64(5)))
	})

	It("computes bitwise AND/OR/EX-OR", func() {
		Expect(computeExecute2(&isa.Instruction{Op: isa.OpAND}, 0b110, 0b011, 0, false).Buffer).To(Equal(int64(0b010)))
		Expect(computeExecute2(&isa.Instruction{Op: isa.OpOR}, 0b110, 0b011, 0, false).Buffer).To(Equal(int64(0b111)))
		Expect(computeExecute2(&isa.Instruction{Op: isa.OpEXOR}, 0b110, 0b011, 0, false).Buffer).To(Equal(int64(0b101)))
	})

	It("computes LOAD/STORE effective address from rs1+imm / rs2+imm", func() {
		Expect(computeExecute2(&isa.Instruction{Op: isa.OpLOAD, Imm: 20}, 100, 0, 0, false).MemAddress).To(Equal(int64(120)))
		Expect(computeExecute2(&isa.Instruction{Op: isa.OpSTORE, Imm: 20}, 0, 100, 0, false).MemAddress).To(Equal(int64(120)))
	})

	It("computes LDR/STR effective address from register sums", func() {
		Expect(computeExecute2(&isa.Instruction{Op: isa.OpLDR}, 5, 7, 0, false).MemAddress).To(Equal(int64(12)))
		Expect(computeExecute2(&isa.Instruction{Op: isa.OpSTR}, 0, 5, 7, false).MemAddress).To(Equal(int64(12)))
	})

	It("takes BZ only when z is true, targeting pc+imm", func() {
		inst := &isa.Instruction{Op: isa.OpBZ, Imm: 8, PC: 4008}
		Expect(computeExecute2(inst, 0, 0, 0, false).BranchTaken).To(BeFalse())
		res := computeExecute2(inst, 0, 0, 0, true)
		Expect(res.BranchTaken).To(BeTrue())
		Expect(res.BranchTarget).To(Equal(uint64(4016)))
	})

	It("takes BNZ only when z is false", func() {
		inst := &isa.Instruction{Op: isa.OpBNZ, Imm: 8, PC: 4008}
		Expect(computeExecute2(inst, 0, 0, 0, true).BranchTaken).To(BeFalse())
		Expect(computeExecute2(inst, 0, 0, 0, false).BranchTaken).To(BeTrue())
	})

	It("always takes JUMP, targeting rs1+imm", func() {
		res := computeExecute2(&isa.Instruction{Op: isa.OpJUMP, Imm: 4}, 4008, 0, 0, false)
		Expect(res.BranchTaken).To(BeTrue())
		Expect(res.BranchTarget).To(Equal(uint64(4012)))
	})

	It("signals HALT", func() {
		res := computeExecute2(&isa.Instruction{Op: isa.OpHALT}, 0, 0, 0, false)
		Expect(res.IsHalt).To(BeTrue())
	})
})

var _ = Describe("accessMemory2", func() {
	It("writes storeValue at memAddress for STORE/STR", func() {
		mem := newFakeMemory()
		accessMemory2(&isa.Instruction{Op: isa.OpSTORE}, 20, 42, mem)
		Expect(mem.Read(20)).To(Equal(int64(42)))

		accessMemory2(&isa.Instruction{Op: isa.OpSTR}, 24, 99, mem)
		Expect(mem.Read(24)).To(Equal(int64(99)))
	})

	It("reads memAddress for LOAD/LDR", func() {
		mem := newFakeMemory()
		mem.Write(20, 42)
		Expect(accessMemory2(&isa.Instruction{Op: isa.OpLOAD}, 20, 0, mem)).To(Equal(int64(42)))
		Expect(accessMemory2(&isa.Instruction{Op: isa.OpLDR}, 20, 0, mem)).To(Equal(int64(42)))
	})

	It("returns 0 for non-memory ops", func() {
		mem := newFakeMemory()
		Expect(accessMemory2(&isa.Instruction{Op: isa.OpADD}, 0, 0, mem)).To(Equal(int64(0)))
	})
})
