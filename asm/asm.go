// Package asm parses APEX assembly text into an ordered sequence of
// isa.Instruction records, the way loader parses an ELF binary into an
// ordered sequence of Segment records: one pass, line oriented, errors
// wrapped with the line they came from.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/apexsim/apex/isa"
)

// Program is a parsed, ordered sequence of APEX instructions, ready to be
// handed to machine.NewCodeMemory. The simulator does not re-parse.
type Program struct {
	Instructions []isa.Instruction
}

// Load reads and parses an APEX assembly file from path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open assembly file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse reads APEX assembly text, one instruction per line. Operands are
// comma-separated; immediates are prefixed '#'; registers are prefixed 'R'.
// Anything from a ';' or '//' to the end of a line is a comment and is
// dropped; lines left blank are skipped. A line starting with '#' is not
// a comment and fails to parse — everything else is implementation-defined
// territory spec §6 leaves open.
func Parse(r io.Reader) (*Program, error) {
	scanner := bufio.NewScanner(r)
	prog := &Program{}

	line := 0
	for scanner.Scan() {
		line++
		text := stripComment(scanner.Text())
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		inst, err := parseLine(text, line)
		if err != nil {
			return nil, err
		}
		prog.Instructions = append(prog.Instructions, inst)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assembly: %w", err)
	}

	return prog, nil
}

// stripComment drops a trailing ';' or '//'-style comment. The mnemonic
// table never uses either character, so this is unambiguous.
func stripComment(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "//"); i >= 0 {
		s = s[:i]
	}
	return s
}

func parseLine(text string, line int) (isa.Instruction, error) {
	fields := strings.SplitN(text, " ", 2)
	mnemonic := strings.ToUpper(strings.TrimSpace(fields[0]))

	var operandText string
	if len(fields) == 2 {
		operandText = fields[1]
	}
	operands := splitOperands(operandText)

	op, ok := mnemonics[mnemonic]
	if !ok {
		return isa.Instruction{}, fmt.Errorf("line %d: unknown mnemonic %q", line, mnemonic)
	}

	inst := isa.Instruction{Op: op, Line: line, Rd: isa.NoReg, Rs1: isa.NoReg, Rs2: isa.NoReg, Rs3: isa.NoReg}

	shape, ok := operandShapes[op]
	if !ok {
		return isa.Instruction{}, fmt.Errorf("line %d: %s has no known operand shape", line, mnemonic)
	}
	if len(operands) != len(shape) {
		return isa.Instruction{}, fmt.Errorf("line %d: %s expects %d operand(s), got %d", line, mnemonic, len(shape), len(operands))
	}

	for i, kind := range shape {
		raw := strings.TrimSpace(operands[i])
		switch kind {
		case operandRd:
			reg, err := parseRegister(raw, line)
			if err != nil {
				return isa.Instruction{}, err
			}
			inst.Rd = reg
		case operandRs1:
			reg, err := parseRegister(raw, line)
			if err != nil {
				return isa.Instruction{}, err
			}
			inst.Rs1 = reg
		case operandRs2:
			reg, err := parseRegister(raw, line)
			if err != nil {
				return isa.Instruction{}, err
			}
			inst.Rs2 = reg
		case operandRs3:
			reg, err := parseRegister(raw, line)
			if err != nil {
				return isa.Instruction{}, err
			}
			inst.Rs3 = reg
		case operandImm:
			imm, err := parseImmediate(raw, line)
			if err != nil {
				return isa.Instruction{}, err
			}
			inst.Imm = imm
		}
	}

	return inst, nil
}

// splitOperands splits a comma-separated operand list, tolerating spaces
// around commas.
func splitOperands(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseRegister(tok string, line int) (uint8, error) {
	if len(tok) < 2 || (tok[0] != 'R' && tok[0] != 'r') {
		return 0, fmt.Errorf("line %d: expected a register operand (R<n>), got %q", line, tok)
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil || n < 0 || n >= 32 {
		return 0, fmt.Errorf("line %d: invalid register %q", line, tok)
	}
	return uint8(n), nil
}

func parseImmediate(tok string, line int) (int32, error) {
	if len(tok) < 2 || tok[0] != '#' {
		return 0, fmt.Errorf("line %d: expected an immediate operand (#<n>), got %q", line, tok)
	}
	n, err := strconv.ParseInt(tok[1:], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid immediate %q", line, tok)
	}
	return int32(n), nil
}

type operandKind int

const (
	operandRd operandKind = iota
	operandRs1
	operandRs2
	operandRs3
	operandImm
)

var mnemonics = map[string]isa.Op{
	"MOVC":  isa.OpMOVC,
	"ADD":   isa.OpADD,
	"SUB":   isa.OpSUB,
	"MUL":   isa.OpMUL,
	"ADDL":  isa.OpADDL,
	"SUBL":  isa.OpSUBL,
	"AND":   isa.OpAND,
	"OR":    isa.OpOR,
	"EX-OR": isa.OpEXOR,
	"EXOR":  isa.OpEXOR,
	"LOAD":  isa.OpLOAD,
	"LDR":   isa.OpLDR,
	"STORE": isa.OpSTORE,
	"STR":   isa.OpSTR,
	"BZ":    isa.OpBZ,
	"BNZ":   isa.OpBNZ,
	"JUMP":  isa.OpJUMP,
	"HALT":  isa.OpHALT,
}

// operandShapes lists, in source order, the operand each opcode expects
// (spec §6's ISA table).
var operandShapes = map[isa.Op][]operandKind{
	isa.OpMOVC:  {operandRd, operandImm},
	isa.OpADD:   {operandRd, operandRs1, operandRs2},
	isa.OpSUB:   {operandRd, operandRs1, operandRs2},
	isa.OpMUL:   {operandRd, operandRs1, operandRs2},
	isa.OpAND:   {operandRd, operandRs1, operandRs2},
	isa.OpOR:    {operandRd, operandRs1, operandRs2},
	isa.OpEXOR:  {operandRd, operandRs1, operandRs2},
	isa.OpADDL:  {operandRd, operandRs1, operandImm},
	isa.OpSUBL:  {operandRd, operandRs1, operandImm},
	isa.OpLOAD:  {operandRd, operandRs1, operandImm},
	isa.OpLDR:   {operandRd, operandRs1, operandRs2},
	isa.OpSTORE: {operandRs1, operandRs2, operandImm},
	isa.OpSTR:   {operandRs1, operandRs2, operandRs3},
	isa.OpBZ:    {operandImm},
	isa.OpBNZ:   {operandImm},
	isa.OpJUMP:  {operandRs1, operandImm},
	isa.OpHALT:  {},
}
