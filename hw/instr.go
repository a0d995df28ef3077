package hw

import "fmt"

// Opcode is the first byte of an instruction.
type Opcode uint8

const (
	OpNOP       Opcode = iota // nop
	OpHLT                     // hlt
	OpMovLitReg               // mov lit, reg
	OpAddRegReg               // add reg, reg
	OpMovRegReg               // mov reg, reg
	OpMovRegMem               // mov reg, [addr]
	OpMovMemReg               // mov [addr], reg

	NumOpcodes int = iota
)

// Valid reports whether op belongs to the instruction set.
func (op Opcode) Valid() bool {
	return int(op) < NumOpcodes
}

func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("op(%02x)", uint8(op))
	}
	return opcodeNames[op].overloaded
}

// InstrSize is the size in bytes of every instruction.
const InstrSize = 4

// Instr is a sakuya16c instruction: an opcode followed by 3 argument bytes.
// Depending on the opcode, arguments are read as 3 bytes, a byte then a word,
// a word then a byte, or not at all. Unused argument bytes are zero.
type Instr struct {
	Op   Opcode
	Args [3]uint8
}

// NewInstr returns an instruction without arguments.
func NewInstr(op Opcode) Instr {
	return Instr{Op: op}
}

// NewInstrBBB returns an instruction taking 3 byte arguments.
func NewInstrBBB(op Opcode, a, b, c uint8) Instr {
	return Instr{Op: op, Args: [3]uint8{a, b, c}}
}

// NewInstrBW returns an instruction taking a byte then a word.
func NewInstrBW(op Opcode, a uint8, w Word) Instr {
	return Instr{Op: op, Args: [3]uint8{a, w.Lo(), w.Hi()}}
}

// NewInstrWB returns an instruction taking a word then a byte.
func NewInstrWB(op Opcode, w Word, b uint8) Instr {
	return Instr{Op: op, Args: [3]uint8{w.Lo(), w.Hi(), b}}
}

func Nop() Instr { return NewInstr(OpNOP) }
func Hlt() Instr { return NewInstr(OpHLT) }

// MovLitReg loads lit into dst.
func MovLitReg(lit Word, dst Reg) Instr { return NewInstrWB(OpMovLitReg, lit, uint8(dst)) }

// MovRegReg copies src into dst.
func MovRegReg(src, dst Reg) Instr { return NewInstrBBB(OpMovRegReg, uint8(src), uint8(dst), 0) }

// MovRegMem writes src as a 16-bit word at addr.
func MovRegMem(src Reg, addr Word) Instr { return NewInstrBW(OpMovRegMem, uint8(src), addr) }

// MovMemReg reads the 16-bit word at addr into dst.
func MovMemReg(addr Word, dst Reg) Instr { return NewInstrWB(OpMovMemReg, addr, uint8(dst)) }

// AddRegReg stores a+b into the accumulator.
func AddRegReg(a, b Reg) Instr { return NewInstrBBB(OpAddRegReg, uint8(a), uint8(b), 0) }

// DecodeInstr decodes the 32-bit representation of an instruction, the
// opcode being the least significant byte.
func DecodeInstr(v uint32) Instr {
	return Instr{
		Op:   Opcode(v & 0xFF),
		Args: [3]uint8{uint8(v >> 8), uint8(v >> 16), uint8(v >> 24)},
	}
}

// Uint32 returns the 32-bit representation of in.
func (in Instr) Uint32() uint32 {
	return uint32(in.Op) | uint32(in.Args[0])<<8 | uint32(in.Args[1])<<16 | uint32(in.Args[2])<<24
}

// Word01 returns the word formed by the first 2 argument bytes.
func (in Instr) Word01() Word { return MakeWord(in.Args[0], in.Args[1]) }

// Word12 returns the word formed by the last 2 argument bytes.
func (in Instr) Word12() Word { return MakeWord(in.Args[1], in.Args[2]) }

// Bytes returns the 4 bytes of in, as stored in a program buffer.
func (in Instr) Bytes() [InstrSize]byte {
	return [InstrSize]byte{uint8(in.Op), in.Args[0], in.Args[1], in.Args[2]}
}

// EncodeProgram serializes instrs into a program buffer.
func EncodeProgram(instrs ...Instr) []byte {
	buf := make([]byte, 0, len(instrs)*InstrSize)
	for _, in := range instrs {
		b := in.Bytes()
		buf = append(buf, b[:]...)
	}
	return buf
}
