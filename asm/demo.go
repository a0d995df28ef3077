// Package asm produces sakuya16c programs and ROMs. There's no assembler
// proper yet, programs are built from hw instruction constructors.
package asm

import (
	"io"

	"remi16/hw"
	"remi16/rom"
)

// DemoLoadAt is where the demo program is loaded.
const DemoLoadAt = 0x7F00

// DemoProgram returns the demo program. Once halted, ac is 4 and r3 holds
// the bit pattern of -32734 ($8022).
func DemoProgram() []hw.Instr {
	return []hw.Instr{
		hw.Nop(),
		hw.MovLitReg(2, hw.R1),
		hw.MovLitReg(2, hw.R2),
		hw.MovLitReg(hw.WordFromInt16(-32734), hw.R3),
		hw.AddRegReg(hw.R1, hw.R2),
		hw.Hlt(),
	}
}

// WriteDemoROM writes a version 0.1 ROM with the demo program as region 0,
// to be loaded at DemoLoadAt in bank 0.
func WriteDemoROM(w io.Writer) error {
	b := rom.NewBuilder(0, 1)
	if err := b.AddRegion(0, DemoLoadAt, 0, hw.EncodeProgram(DemoProgram()...)); err != nil {
		return err
	}
	_, err := b.WriteTo(w)
	return err
}
