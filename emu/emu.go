package emu

import (
	"bytes"
	"fmt"

	"remi16/emu/log"
	"remi16/hw"
	"remi16/hw/hwio"
	"remi16/hw/snapshot"
	"remi16/rom"
)

// Emulator is a powered-up sakuya16c machine: CPU, banked memory on the
// system bus, and the engine running the loaded program.
type Emulator struct {
	CPU    *hw.CPU
	Mem    *hw.Memory
	Bus    *hwio.Bus
	Engine *hw.Engine

	cfg  EmulationConfig
	bank uint16 // bank selected at load time, restored on reset
}

// PowerUp creates a machine. No program is loaded yet.
func PowerUp(cfg Config) (*Emulator, error) {
	if err := hw.CheckOpcodeTable(); err != nil {
		return nil, fmt.Errorf("power up failed: %w", err)
	}

	cpu := hw.NewCPU()
	mem := hw.NewMemory(cpu)
	bus := hwio.NewBus("system", mem)
	eng := hw.NewEngine(cpu, bus)

	// CPU execution trace setup.
	if cfg.TraceOut != nil {
		eng.SetTraceOutput(cfg.TraceOut)
	}

	log.AddContext(eng)
	log.ModEmu.InfoZ("Powered up").End()

	return &Emulator{
		CPU:    cpu,
		Mem:    mem,
		Bus:    bus,
		Engine: eng,
		cfg:    cfg.Emulation,
	}, nil
}

// Close detaches the emulator from the logger.
func (e *Emulator) Close() {
	log.RemoveContext(e.Engine)
}

// LoadProgram loads a program buffer, addr being the address it's considered
// loaded at. Registers and memory are zeroed.
func (e *Emulator) LoadProgram(addr uint16, buf []byte) error {
	e.CPU.Reset()
	e.Mem.Clear()
	e.bank = 0
	return e.Engine.Load(addr, buf)
}

// LoadROM loads region of r as the program. The region's load address is used
// as program address and its bank, if any, is selected.
func (e *Emulator) LoadROM(r *rom.Rom, region uint32) error {
	reg, ok := r.Lookup(region)
	if !ok {
		return &rom.UnknownRegionError{ID: region}
	}
	buf, err := r.Region(region)
	if err != nil {
		return err
	}
	if err := e.LoadProgram(reg.LoadAt, buf); err != nil {
		return fmt.Errorf("region %d: %w", region, err)
	}
	if reg.Bank != rom.AnyBank {
		e.bank = reg.Bank
		e.CPU.Set(hw.MB, reg.Bank)
	}

	log.ModEmu.InfoZ("Loaded ROM region").
		Uint32("region", region).
		Hex16("loadat", reg.LoadAt).
		Uint16("bank", reg.Bank).
		End()
	return nil
}

// LoadEntryROM loads the configured entry region of r.
func (e *Emulator) LoadEntryROM(r *rom.Rom) error {
	return e.LoadROM(r, e.cfg.EntryRegion)
}

func (e *Emulator) Step() (hw.Instr, hw.ControlFlow) { return e.Engine.Step() }
func (e *Emulator) Execute() error                   { return e.Engine.Execute() }
func (e *Emulator) Halted() bool                     { return e.Engine.Halted() }
func (e *Emulator) Program() hw.Program              { return e.Engine.Program() }
func (e *Emulator) ProgramAddr() uint16              { return e.Engine.Base() }
func (e *Emulator) Reg(r hw.Reg) uint16              { return e.CPU.Get(r) }
func (e *Emulator) Registers() [hw.NumRegs]uint16    { return e.CPU.Regs }

// Reset zeroes the registers and rewinds the program. Memory is preserved and
// the bank selected by the loaded ROM region is selected again.
func (e *Emulator) Reset() {
	log.ModEmu.InfoZ("Performing reset").End()
	e.Engine.Reset()
	e.CPU.Set(hw.MB, e.bank)
}

// SaveSnapshot serializes the whole machine state.
func (e *Emulator) SaveSnapshot() ([]byte, error) {
	state := snapshot.Machine{
		Version: snapshot.Version,
		CPU: snapshot.CPU{
			Regs:   e.CPU.Regs,
			Halted: e.Engine.Halted(),
		},
		Program: snapshot.Program{
			Base: e.Engine.Base(),
			Code: hw.EncodeProgram(e.Engine.Program()...),
		},
		Low: e.Mem.Low[:],
	}
	for i := range e.Mem.Banks {
		state.Banks[i] = e.Mem.Banks[i][:]
	}

	var buf bytes.Buffer
	if err := state.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadSnapshot restores a state previously saved with SaveSnapshot.
func (e *Emulator) LoadSnapshot(buf []byte) error {
	state, err := snapshot.Decode(bytes.NewReader(buf))
	if err != nil {
		return err
	}

	if len(state.Low) != len(e.Mem.Low) {
		return fmt.Errorf("snapshot: low memory is %d bytes, want %d", len(state.Low), len(e.Mem.Low))
	}
	for i, b := range state.Banks {
		if len(b) != len(e.Mem.Banks[i]) {
			return fmt.Errorf("snapshot: bank %d is %d bytes, want %d", i, len(b), len(e.Mem.Banks[i]))
		}
	}

	if len(state.Program.Code) != 0 {
		if err := e.Engine.Load(state.Program.Base, state.Program.Code); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	e.Engine.SetHalted(state.CPU.Halted)
	e.CPU.Regs = state.CPU.Regs
	e.bank = state.CPU.Regs[hw.MB]
	copy(e.Mem.Low[:], state.Low)
	for i, b := range state.Banks {
		copy(e.Mem.Banks[i][:], b)
	}

	log.ModEmu.InfoZ("Loaded snapshot").End()
	return nil
}
