package hw

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode matches every *DecodeFault.
	ErrDecode = errors.New("decode fault")
	// ErrProgramInvariant matches every *ProgramError.
	ErrProgramInvariant = errors.New("program invariant violation")
	// ErrNoProgram is returned when stepping an engine without program.
	ErrNoProgram = errors.New("no program loaded")
)

// DecodeFault reports an instruction that can't be dispatched: unknown
// opcode, invalid register operand or program counter outside the program.
type DecodeFault struct {
	PC     uint16
	Instr  Instr
	Reason string
}

func (e *DecodeFault) Error() string {
	return fmt.Sprintf("decode fault at pc=$%04X (%08X): %s", e.PC, e.Instr.Uint32(), e.Reason)
}

func (e *DecodeFault) Is(err error) bool { return err == ErrDecode }

// ProgramError reports a program buffer that can't be executed.
type ProgramError struct {
	Reason string
}

func (e *ProgramError) Error() string {
	return "invalid program: " + e.Reason
}

func (e *ProgramError) Is(err error) bool { return err == ErrProgramInvariant }
