package hw

import "fmt"

var opcodeNames = [NumOpcodes]struct {
	short      string
	overloaded string
}{
	OpNOP:       {"nop", "nop"},
	OpHLT:       {"hlt", "hlt"},
	OpMovLitReg: {"mov", "mov_lit_reg"},
	OpAddRegReg: {"add", "add_reg_reg"},
	OpMovRegReg: {"mov", "mov_reg_reg"},
	OpMovRegMem: {"mov", "mov_reg_mem"},
	OpMovMemReg: {"mov", "mov_mem_reg"},
}

// OpcodeName returns the mnemonic of op. Overloaded names tell apart the
// variants sharing a mnemonic (mov_lit_reg vs mov_reg_reg).
func OpcodeName(op Opcode, overloaded bool) string {
	if !op.Valid() {
		return "???"
	}
	if overloaded {
		return opcodeNames[op].overloaded
	}
	return opcodeNames[op].short
}

func regOperand(b uint8) string {
	if r := Reg(b); r.Valid() {
		return "#" + r.String()
	}
	return "#??"
}

type DisasmOp struct {
	Opcode string
	Oper   string
}

func (d DisasmOp) String() string {
	if d.Oper == "" {
		return d.Opcode
	}
	return d.Opcode + " " + d.Oper
}

// Disasm disassembles a single instruction.
func Disasm(in Instr, overloaded bool) DisasmOp {
	d := DisasmOp{Opcode: OpcodeName(in.Op, overloaded)}

	switch in.Op {
	case OpMovLitReg:
		d.Oper = fmt.Sprintf("$%04x, %s", uint16(in.Word01()), regOperand(in.Args[2]))
	case OpAddRegReg, OpMovRegReg:
		d.Oper = regOperand(in.Args[0]) + ", " + regOperand(in.Args[1])
	case OpMovRegMem:
		d.Oper = fmt.Sprintf("%s, [$%04x]", regOperand(in.Args[0]), uint16(in.Word12()))
	case OpMovMemReg:
		d.Oper = fmt.Sprintf("[$%04x], %s", uint16(in.Word01()), regOperand(in.Args[2]))
	}
	return d
}
