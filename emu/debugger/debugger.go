// Package debugger implements an interactive debugger session over an
// emulator: stepping, register views, program listing and state reports.
package debugger

import (
	"github.com/go-faster/jx"

	"remi16/emu"
	"remi16/emu/log"
	"remi16/hw"
)

var modDbg = log.NewModule("debugger")

type status int

const (
	paused status = iota
	halted
	faulted
)

func (s status) String() string {
	switch s {
	case halted:
		return "halted"
	case faulted:
		return "faulted"
	}
	return "paused"
}

// A Debugger holds the state of a debugging session. Register views are per
// session, 2 debuggers on the same emulator don't share them.
type Debugger struct {
	emu *emu.Emulator

	Views        [hw.NumRegs]RegView
	ShowOverload bool // show overloaded mnemonics (mov_lit_reg vs mov)

	lastErr error // error of the last faulting instruction
}

func New(e *emu.Emulator, cfg emu.DebuggerConfig) *Debugger {
	dbg := &Debugger{
		emu:          e,
		ShowOverload: cfg.ShowOverload,
	}
	for name, view := range cfg.RegViews {
		r, ok := hw.RegByName(name)
		if !ok {
			continue
		}
		if v, ok := ParseRegView(view); ok {
			dbg.Views[r] = v
		}
	}
	return dbg
}

func (dbg *Debugger) status() status {
	switch {
	case dbg.emu.Halted():
		return halted
	case dbg.lastErr != nil:
		return faulted
	}
	return paused
}

// Step executes one instruction.
func (dbg *Debugger) Step() (hw.Instr, hw.ControlFlow) {
	in, flow := dbg.emu.Step()
	dbg.lastErr = flow.Err

	modDbg.DebugZ("step").
		Hex32("instr", in.Uint32()).
		Stringer("flow", flow).
		End()
	return in, flow
}

// Run executes until halt or fault.
func (dbg *Debugger) Run() error {
	dbg.lastErr = dbg.emu.Execute()
	return dbg.lastErr
}

func (dbg *Debugger) Reset() {
	dbg.lastErr = nil
	dbg.emu.Reset()
}

func (dbg *Debugger) Halted() bool { return dbg.emu.Halted() }

// CycleView switches r to its next view and returns it.
func (dbg *Debugger) CycleView(r hw.Reg) RegView {
	dbg.Views[r] = dbg.Views[r].Next()
	return dbg.Views[r]
}

// FormatReg formats the value of r with its current view.
func (dbg *Debugger) FormatReg(r hw.Reg) string {
	return dbg.Views[r].Format(dbg.emu.Reg(r))
}

// EncodeState writes the session state as a JSON 'state' event.
func (dbg *Debugger) EncodeState(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("event")
	e.Str("state")

	e.FieldStart("data")
	e.ObjStart()
	e.FieldStart("status")
	e.Str(dbg.status().String())
	e.FieldStart("pc")
	e.UInt16(dbg.emu.Reg(hw.PC))
	e.FieldStart("addr")
	e.UInt16(dbg.emu.ProgramAddr() + dbg.emu.Reg(hw.PC))
	if in, ok := dbg.emu.Engine.Current(); ok {
		e.FieldStart("instr")
		e.Str(hw.Disasm(in, dbg.ShowOverload).String())
	}
	if dbg.lastErr != nil {
		e.FieldStart("error")
		e.Str(dbg.lastErr.Error())
	}

	e.FieldStart("regs")
	e.ObjStart()
	for i := 0; i < hw.NumRegs; i++ {
		r := hw.Reg(i)
		e.FieldStart(r.String())
		e.Str(dbg.FormatReg(r))
	}
	e.ObjEnd()
	e.ObjEnd()
	e.ObjEnd()
}
