package pipeline

import "github.com/apexsim/apex/isa"

// execute2Result is the outcome of computing EX2 for one instruction.
type execute2Result struct {
	Buffer       int64
	MemAddress   int64
	BranchTaken  bool
	BranchTarget uint64
	IsHalt       bool
}

// computeExecute2 performs the ALU operation, address calculation, or
// control-transfer resolution for the instruction in the EX2 latch, per
// the table in spec §4.4. rs1/rs2/rs3 are the operand values carried
// forward from Decode (resolved there, unchanged by EX1's pass-through).
func computeExecute2(inst *isa.Instruction, rs1, rs2, rs3 int64, z bool) execute2Result {
	var res execute2Result

	switch inst.Op {
	case isa.OpMOVC:
		res.Buffer = int64(inst.Imm)
	case isa.OpADDL:
		res.Buffer = rs1 + int64(inst.Imm)
	case isa.OpSUBL:
		res.Buffer = rs1 - int64(inst.Imm)
	case isa.OpADD:
		res.Buffer = rs1 + rs2
	case isa.OpSUB:
		res.Buffer = rs1 - rs2
	case isa.OpMUL:
		res.Buffer = rs1 * rs2
	case isa.OpAND:
		res.Buffer = rs1 & rs2
	case isa.OpOR:
		res.Buffer = rs1 | rs2
	case isa.OpEXOR:
		res.Buffer = rs1 ^ rs2
	case isa.OpLOAD:
		res.MemAddress = rs1 + int64(inst.Imm)
	case isa.OpSTORE:
		res.MemAddress = rs2 + int64(inst.Imm)
	case isa.OpLDR:
		res.MemAddress = rs1 + rs2
	case isa.OpSTR:
		res.MemAddress = rs2 + rs3
	case isa.OpBZ:
		if z {
			res.BranchTaken = true
			res.BranchTarget = uint64(int64(inst.PC) + int64(inst.Imm))
		}
	case isa.OpBNZ:
		if !z {
			res.BranchTaken = true
			res.BranchTarget = uint64(int64(inst.PC) + int64(inst.Imm))
		}
	case isa.OpJUMP:
		res.BranchTaken = true
		res.BranchTarget = uint64(rs1 + int64(inst.Imm))
	case isa.OpHALT:
		res.IsHalt = true
	}

	return res
}

// accessMemory2 performs the MEM2 load/store access for the instruction
// currently in the MEM2 latch, per spec §4.5. storeValue is the value to
// write for STORE/STR (the already-resolved rs1 operand carried in the
// latch); it is ignored for every other opcode.
func accessMemory2(inst *isa.Instruction, memAddress int64, storeValue int64, data dataMemory) int64 {
	switch inst.Op {
	case isa.OpSTORE, isa.OpSTR:
		data.Write(memAddress, storeValue)
		return 0
	case isa.OpLOAD, isa.OpLDR:
		return data.Read(memAddress)
	default:
		return 0
	}
}

// dataMemory is the minimal surface stages.go needs from machine.DataMemory,
// kept as an interface purely so this file can be unit tested without
// constructing a full machine.DataMemory.
type dataMemory interface {
	Read(addr int64) int64
	Write(addr int64, value int64)
}
