package debugger

import (
	"fmt"
	"io"

	"remi16/hw"
)

type ListingLine struct {
	Addr    uint16
	Instr   hw.Instr
	Disasm  string
	Current bool // instruction at pc
}

func (l ListingLine) String() string {
	marker := "  "
	if l.Current {
		marker = "> "
	}
	b := l.Instr.Bytes()
	return fmt.Sprintf("%s%04X  %02X %02X %02X %02X  %s", marker, l.Addr, b[0], b[1], b[2], b[3], l.Disasm)
}

// Listing disassembles the whole program.
func (dbg *Debugger) Listing() []ListingLine {
	prog := dbg.emu.Program()
	base := dbg.emu.ProgramAddr()
	pc := dbg.emu.Reg(hw.PC)

	lines := make([]ListingLine, len(prog))
	for i, in := range prog {
		off := uint16(i * hw.InstrSize)
		lines[i] = ListingLine{
			Addr:    base + off,
			Instr:   in,
			Disasm:  hw.Disasm(in, dbg.ShowOverload).String(),
			Current: off == pc,
		}
	}
	return lines
}

func (dbg *Debugger) WriteListing(w io.Writer) {
	for _, l := range dbg.Listing() {
		fmt.Fprintln(w, l)
	}
}
