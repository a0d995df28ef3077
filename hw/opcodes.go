package hw

import (
	"fmt"

	"remi16/hw/hwio"
)

// FlowKind tells the execution loop what to do after an instruction.
type FlowKind uint8

const (
	FlowContinue FlowKind = iota // go on with the next instruction
	FlowHalt                     // stop, the CPU is halted
	FlowFault                    // stop, the instruction failed
	FlowJump                     // go on at Target
)

func (k FlowKind) String() string {
	switch k {
	case FlowContinue:
		return "continue"
	case FlowHalt:
		return "halt"
	case FlowFault:
		return "fault"
	case FlowJump:
		return "jump"
	}
	return fmt.Sprintf("flow(%d)", uint8(k))
}

// ControlFlow is the outcome of an instruction.
type ControlFlow struct {
	Kind   FlowKind
	Target uint16 // pc to jump to, for FlowJump
	Err    error  // cause, for FlowFault
}

var (
	Continue = ControlFlow{Kind: FlowContinue}
	Halt     = ControlFlow{Kind: FlowHalt}
)

func Fault(err error) ControlFlow    { return ControlFlow{Kind: FlowFault, Err: err} }
func Jump(target uint16) ControlFlow { return ControlFlow{Kind: FlowJump, Target: target} }

func (f ControlFlow) String() string {
	switch f.Kind {
	case FlowFault:
		return fmt.Sprintf("fault: %v", f.Err)
	case FlowJump:
		return fmt.Sprintf("jump $%04X", f.Target)
	}
	return f.Kind.String()
}

type opFunc func(cpu *CPU, bus *hwio.Bus, in Instr) ControlFlow

// ops is the instruction dispatch table, indexed by opcode.
var ops = [NumOpcodes]opFunc{
	OpNOP:       nop,
	OpHLT:       hlt,
	OpMovLitReg: movLitReg,
	OpAddRegReg: addRegReg,
	OpMovRegReg: movRegReg,
	OpMovRegMem: movRegMem,
	OpMovMemReg: movMemReg,
}

// CheckOpcodeTable verifies that every opcode has a handler and a name.
func CheckOpcodeTable() error {
	for op := 0; op < NumOpcodes; op++ {
		if ops[op] == nil {
			return fmt.Errorf("opcode %02x (%s) has no handler", op, Opcode(op))
		}
		if opcodeNames[op].short == "" || opcodeNames[op].overloaded == "" {
			return fmt.Errorf("opcode %02x has no name", op)
		}
	}
	return nil
}

// Execute executes a single instruction. It never modifies pc, that's the
// job of the execution loop.
func Execute(cpu *CPU, bus *hwio.Bus, in Instr) ControlFlow {
	if !in.Op.Valid() {
		return Fault(&DecodeFault{PC: cpu.Get(PC), Instr: in, Reason: "unknown opcode"})
	}
	return ops[in.Op](cpu, bus, in)
}

// reg returns the register operand in argument slot i.
func reg(cpu *CPU, in Instr, i int) (Reg, error) {
	r := Reg(in.Args[i])
	if !r.Valid() {
		return 0, &DecodeFault{PC: cpu.Get(PC), Instr: in, Reason: fmt.Sprintf("invalid register %d in argument %d", in.Args[i], i)}
	}
	return r, nil
}

// NOP - no operation.
//
// (null - null - null)
func nop(cpu *CPU, bus *hwio.Bus, in Instr) ControlFlow { return Continue }

// HLT - halts the CPU.
//
// (null - null - null)
func hlt(cpu *CPU, bus *hwio.Bus, in Instr) ControlFlow { return Halt }

// MOV lit, reg - loads a literal into a register.
//
// (16bit literal - 8bit register)
func movLitReg(cpu *CPU, bus *hwio.Bus, in Instr) ControlFlow {
	dst, err := reg(cpu, in, 2)
	if err != nil {
		return Fault(err)
	}
	cpu.Set(dst, uint16(in.Word01()))
	return Continue
}

// MOV reg, reg - copies a register into another.
//
// (8bit source register - 8bit destination register - null)
func movRegReg(cpu *CPU, bus *hwio.Bus, in Instr) ControlFlow {
	src, err := reg(cpu, in, 0)
	if err != nil {
		return Fault(err)
	}
	dst, err := reg(cpu, in, 1)
	if err != nil {
		return Fault(err)
	}
	cpu.Set(dst, cpu.Get(src))
	return Continue
}

// MOV reg, [addr] - writes a register as a 16-bit word in memory.
//
// (8bit register - 16bit address)
func movRegMem(cpu *CPU, bus *hwio.Bus, in Instr) ControlFlow {
	src, err := reg(cpu, in, 0)
	if err != nil {
		return Fault(err)
	}
	if err := bus.Write16(uint16(in.Word12()), cpu.Get(src)); err != nil {
		return Fault(err)
	}
	return Continue
}

// MOV [addr], reg - reads a 16-bit word from memory into a register.
//
// (16bit address - 8bit register)
func movMemReg(cpu *CPU, bus *hwio.Bus, in Instr) ControlFlow {
	dst, err := reg(cpu, in, 2)
	if err != nil {
		return Fault(err)
	}
	val, err := bus.Read16(uint16(in.Word01()))
	if err != nil {
		return Fault(err)
	}
	cpu.Set(dst, val)
	return Continue
}

// ADD reg, reg - adds 2 registers, the result goes in the accumulator.
//
// (8bit register - 8bit register - null)
func addRegReg(cpu *CPU, bus *hwio.Bus, in Instr) ControlFlow {
	a, err := reg(cpu, in, 0)
	if err != nil {
		return Fault(err)
	}
	b, err := reg(cpu, in, 1)
	if err != nil {
		return Fault(err)
	}
	cpu.Set(AC, cpu.Get(a)+cpu.Get(b))
	return Continue
}
