package hw

import (
	"encoding/binary"
	"io"

	"remi16/emu/log"
	"remi16/hw/hwio"
)

// Program is a decoded program buffer.
type Program []Instr

// MaxProgramSize is the size of the 16-bit address space.
const MaxProgramSize = 0x10000

// DecodeProgram decodes a program buffer. A program is made of whole
// instructions and must end with hlt.
func DecodeProgram(buf []byte) (Program, error) {
	if len(buf) == 0 {
		return nil, &ProgramError{Reason: "empty program"}
	}
	if len(buf) > MaxProgramSize {
		return nil, &ProgramError{Reason: "program larger than 64K"}
	}
	if len(buf)%InstrSize != 0 {
		return nil, &ProgramError{Reason: "size is not a multiple of the instruction size"}
	}

	prog := make(Program, len(buf)/InstrSize)
	for i := range prog {
		prog[i] = DecodeInstr(binary.LittleEndian.Uint32(buf[i*InstrSize:]))
	}
	if last := prog[len(prog)-1]; last.Op != OpHLT {
		return nil, &ProgramError{Reason: "last instruction is " + last.Op.String() + ", not hlt"}
	}
	return prog, nil
}

// Engine runs a program on a CPU connected to a bus.
//
// The program counter is a byte offset into the program. It's only updated
// here, after each instruction: +4 when the instruction continues, the target
// of a jump, unchanged on halt or fault.
type Engine struct {
	CPU *CPU
	Bus *hwio.Bus

	prog   Program
	base   uint16 // address the program is loaded at (for display)
	halted bool

	// Non-nil when execution tracing is enabled.
	tracer *tracer
}

func NewEngine(cpu *CPU, bus *hwio.Bus) *Engine {
	return &Engine{CPU: cpu, Bus: bus}
}

// Load decodes buf as the program to run and rewinds pc. base is the address
// the program is considered loaded at, it only matters for listings and
// traces.
func (e *Engine) Load(base uint16, buf []byte) error {
	prog, err := DecodeProgram(buf)
	if err != nil {
		return err
	}

	e.prog = prog
	e.base = base
	e.halted = false
	e.CPU.Set(PC, 0)

	log.ModCPU.InfoZ("program loaded").
		Hex16("base", base).
		Int("instrs", len(prog)).
		End()
	return nil
}

func (e *Engine) Program() Program { return e.prog }
func (e *Engine) Base() uint16     { return e.base }
func (e *Engine) Halted() bool     { return e.halted }

// SetHalted sets the halted state, used when restoring a snapshot.
func (e *Engine) SetHalted(halted bool) { e.halted = halted }

// Reset zeroes the CPU registers, the program stays loaded.
func (e *Engine) Reset() {
	e.CPU.Reset()
	e.halted = false
}

// SetTraceOutput enables execution tracing to w, or disables it if w is nil.
func (e *Engine) SetTraceOutput(w io.Writer) {
	if w == nil {
		e.tracer = nil
		return
	}
	e.tracer = &tracer{w: w}
}

// Current returns the instruction at pc, if any.
func (e *Engine) Current() (Instr, bool) {
	pc := e.CPU.Get(PC)
	idx := int(pc / InstrSize)
	if pc%InstrSize != 0 || idx >= len(e.prog) {
		return Instr{}, false
	}
	return e.prog[idx], true
}

// Step executes the instruction at pc. Once the CPU is halted, Step keeps
// returning the hlt instruction and doesn't modify anything.
func (e *Engine) Step() (Instr, ControlFlow) {
	if len(e.prog) == 0 {
		return Instr{}, Fault(ErrNoProgram)
	}

	pc := e.CPU.Get(PC)
	in, ok := e.Current()
	if !ok {
		return Instr{}, Fault(&DecodeFault{PC: pc, Reason: "pc outside program"})
	}
	if e.halted {
		return in, Halt
	}

	if e.tracer != nil {
		e.tracer.write(e.base+pc, in, e.CPU)
	}

	flow := Execute(e.CPU, e.Bus, in)
	switch flow.Kind {
	case FlowContinue:
		e.CPU.Set(PC, pc+InstrSize)
	case FlowJump:
		e.CPU.Set(PC, flow.Target)
	case FlowHalt:
		e.CPU.Set(PC, pc)
		e.halted = true
		log.ModCPU.InfoZ("CPU halted").Hex16("pc", pc).End()
	case FlowFault:
		e.CPU.Set(PC, pc)
		log.ModCPU.WarnZ("instruction fault").
			Hex16("pc", pc).
			Hex32("instr", in.Uint32()).
			Error("err", flow.Err).
			End()
	}
	return in, flow
}

// Execute steps until the CPU halts. It returns the error of the faulting
// instruction, if any.
func (e *Engine) Execute() error {
	for {
		_, flow := e.Step()
		switch flow.Kind {
		case FlowHalt:
			return nil
		case FlowFault:
			return flow.Err
		}
	}
}

// AddLogContext implements log.Context.
func (e *Engine) AddLogContext(z *log.EntryZ) {
	z.Hex16("pc", e.CPU.Get(PC))
}
