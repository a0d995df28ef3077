package hw

import (
	"fmt"
	"strings"
)

// Reg identifies one of the 16 sakuya16c registers. The first 8 have a
// dedicated role, the last 8 are general purpose.
type Reg uint8

const (
	PC Reg = iota // program counter
	AC            // accumulator
	SP            // stack pointer
	FP            // frame pointer
	IM            // interrupt mask
	MB            // current memory bank
	PS            // reserved for pseudo-instructions
	FL            // general purpose floating point register
	R0
	R1
	R2
	R3
	R4
	R5
	R6
	R7

	NumRegs int = iota
)

var regNames = [NumRegs]string{
	"pc", "ac", "sp", "fp", "im", "mb", "ps", "fl",
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
}

func (r Reg) Valid() bool { return int(r) < NumRegs }

func (r Reg) String() string {
	if !r.Valid() {
		return fmt.Sprintf("reg(%d)", uint8(r))
	}
	return regNames[r]
}

// RegByName returns the register called name ("pc", "r3", ...). Names are
// case insensitive.
func RegByName(name string) (Reg, bool) {
	for i, s := range regNames {
		if strings.EqualFold(s, name) {
			return Reg(i), true
		}
	}
	return 0, false
}

// Status holds the CPU status flags. Interrupts aren't implemented yet so
// it's empty for now.
type Status struct{}

// CPU is the sakuya16c register file. All registers are 16-bit wide and
// arithmetic wraps around.
type CPU struct {
	Regs   [NumRegs]uint16
	Status Status
}

// NewCPU creates a CPU at power-up state, all registers zeroed.
func NewCPU() *CPU {
	return &CPU{}
}

func (c *CPU) Get(r Reg) uint16 { return c.Regs[r] }

func (c *CPU) Set(r Reg, val uint16) { c.Regs[r] = val }

// Reset zeroes all registers and the status.
func (c *CPU) Reset() {
	c.Regs = [NumRegs]uint16{}
	c.Status = Status{}
}

// Bank returns the memory bank register.
func (c *CPU) Bank() uint16 { return c.Regs[MB] }

func (c *CPU) String() string {
	s := ""
	for i, v := range c.Regs {
		if i != 0 {
			s += " "
		}
		s += fmt.Sprintf("%s:%04X", regNames[i], v)
	}
	return s
}
