// Package isa defines the APEX instruction set: its opcodes, the decoded
// instruction record each pipeline latch carries, and the per-opcode source/
// destination table Decode consults to drive hazard detection.
package isa

import (
	"strconv"
	"strings"
)

// Op identifies an APEX opcode.
type Op uint8

// APEX opcodes.
const (
	OpUnknown Op = iota
	OpMOVC
	OpADD
	OpSUB
	OpMUL
	OpADDL
	OpSUBL
	OpAND
	OpOR
	OpEXOR
	OpLOAD
	OpLDR
	OpSTORE
	OpSTR
	OpBZ
	OpBNZ
	OpJUMP
	OpHALT
)

// String returns the assembly mnemonic for the opcode.
func (o Op) String() string {
	switch o {
	case OpMOVC:
		return "MOVC"
	case OpADD:
		return "ADD"
	case OpSUB:
		return "SUB"
	case OpMUL:
		return "MUL"
	case OpADDL:
		return "ADDL"
	case OpSUBL:
		return "SUBL"
	case OpAND:
		return "AND"
	case OpOR:
		return "OR"
	case OpEXOR:
		return "EX-OR"
	case OpLOAD:
		return "LOAD"
	case OpLDR:
		return "LDR"
	case OpSTORE:
		return "STORE"
	case OpSTR:
		return "STR"
	case OpBZ:
		return "BZ"
	case OpBNZ:
		return "BNZ"
	case OpJUMP:
		return "JUMP"
	case OpHALT:
		return "HALT"
	default:
		return "UNKNOWN"
	}
}

// NoReg marks an unused register slot in an Instruction.
const NoReg = 0xFF

// Instruction is the decoded, immutable record produced once by the
// assembler and carried unchanged through every pipeline latch.
type Instruction struct {
	Op                Op
	Rd, Rs1, Rs2, Rs3 uint8 // NoReg when the field is unused by Op
	Imm               int32
	PC                uint64 // address this instruction was fetched from

	// Line is the 1-based source line number, kept only for diagnostics.
	Line int
}

// IsBubble reports whether this record represents an empty latch slot.
func (i *Instruction) IsBubble() bool {
	return i == nil
}

// String renders the instruction in its assembly form, e.g. "ADD,R3,R1,R2",
// for the per-cycle trace (spec §6: "pretty-printed instruction").
func (i *Instruction) String() string {
	if i == nil {
		return "--EMPTY--"
	}

	fields := []string{i.Op.String()}
	for _, op := range traitOperandOrder[i.Op] {
		switch op {
		case 'd':
			fields = append(fields, regString(i.Rd))
		case '1':
			fields = append(fields, regString(i.Rs1))
		case '2':
			fields = append(fields, regString(i.Rs2))
		case '3':
			fields = append(fields, regString(i.Rs3))
		case 'i':
			fields = append(fields, "#"+itoa(int64(i.Imm)))
		}
	}
	return strings.Join(fields, ",")
}

func regString(r uint8) string {
	if r == NoReg {
		return "R?"
	}
	return "R" + itoa(int64(r))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// traitOperandOrder mirrors the source-order operand shapes asm.Parse
// expects, used only to render instructions back to text for the trace.
var traitOperandOrder = map[Op]string{
	OpMOVC:  "di",
	OpADD:   "d12",
	OpSUB:   "d12",
	OpMUL:   "d12",
	OpAND:   "d12",
	OpOR:    "d12",
	OpEXOR:  "d12",
	OpADDL:  "d1i",
	OpSUBL:  "d1i",
	OpLOAD:  "d1i",
	OpLDR:   "d12",
	OpSTORE: "12i",
	OpSTR:   "123",
	OpBZ:    "i",
	OpBNZ:   "i",
	OpJUMP:  "1i",
	OpHALT:  "",
}

// Traits describes the source/destination shape of an opcode: which
// operands Decode must resolve before the instruction may leave DRF, and
// which architectural state WB commits. This is the table from spec §4.2.
type Traits struct {
	NeedsRs1   bool
	NeedsRs2   bool
	NeedsRs3   bool
	NeedsZ     bool
	WritesRd   bool
	SetsZ      bool
	IsBranch   bool
	IsJump     bool
	IsHalt     bool
	IsLoad     bool // result available only at MEM2/WB (LOAD, LDR)
	IsALULike  bool // result available at EX2 (arithmetic/logical/MOVC)
	IsStore    bool
}

// traitTable is indexed by Op and holds the static decode table.
var traitTable = map[Op]Traits{
	OpMOVC:  {WritesRd: true, IsALULike: true},
	OpADDL:  {NeedsRs1: true, WritesRd: true, SetsZ: true, IsALULike: true},
	OpSUBL:  {NeedsRs1: true, WritesRd: true, SetsZ: true, IsALULike: true},
	OpADD:   {NeedsRs1: true, NeedsRs2: true, WritesRd: true, SetsZ: true, IsALULike: true},
	OpSUB:   {NeedsRs1: true, NeedsRs2: true, WritesRd: true, SetsZ: true, IsALULike: true},
	OpMUL:   {NeedsRs1: true, NeedsRs2: true, WritesRd: true, SetsZ: true, IsALULike: true},
	OpAND:   {NeedsRs1: true, NeedsRs2: true, WritesRd: true, IsALULike: true},
	OpOR:    {NeedsRs1: true, NeedsRs2: true, WritesRd: true, IsALULike: true},
	OpEXOR:  {NeedsRs1: true, NeedsRs2: true, WritesRd: true, IsALULike: true},
	OpLOAD:  {NeedsRs1: true, WritesRd: true, IsLoad: true},
	OpLDR:   {NeedsRs1: true, NeedsRs2: true, WritesRd: true, IsLoad: true},
	OpSTORE: {NeedsRs1: true, NeedsRs2: true, IsStore: true},
	OpSTR:   {NeedsRs1: true, NeedsRs2: true, NeedsRs3: true, IsStore: true},
	OpBZ:    {NeedsZ: true, IsBranch: true},
	OpBNZ:   {NeedsZ: true, IsBranch: true},
	OpJUMP:  {NeedsRs1: true, IsJump: true},
	OpHALT:  {IsHalt: true},
}

// TraitsOf returns the decode-table entry for op. Unknown ops return the
// zero Traits (no operands needed, writes nothing).
func TraitsOf(op Op) Traits {
	return traitTable[op]
}
