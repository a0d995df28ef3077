package emu

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remi16/emu/log"
	"remi16/hw"
	"remi16/rom"
)

func init() {
	log.Disable()
}

func demoProgram() []byte {
	return hw.EncodeProgram(
		hw.Nop(),
		hw.MovLitReg(2, hw.R1),
		hw.MovLitReg(2, hw.R2),
		hw.MovLitReg(hw.WordFromInt16(-32734), hw.R3),
		hw.AddRegReg(hw.R1, hw.R2),
		hw.Hlt(),
	)
}

func powerUp(tb testing.TB, cfg Config) *Emulator {
	tb.Helper()

	e, err := PowerUp(cfg)
	require.NoError(tb, err)
	tb.Cleanup(e.Close)
	return e
}

func testROM(t *testing.T, bank uint16) *rom.Rom {
	t.Helper()

	b := rom.NewBuilder(0, 1)
	require.NoError(t, b.AddRegion(0, 0x7F00, bank, demoProgram()))
	require.NoError(t, b.AddRegion(1, 0, rom.AnyBank, []byte{1, 2, 3}))

	var buf bytes.Buffer
	_, err := b.WriteTo(&buf)
	require.NoError(t, err)

	r, err := rom.New(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return r
}

func TestLoadProgramExecute(t *testing.T) {
	assert := assert.New(t)

	e := powerUp(t, Config{})
	require.NoError(t, e.LoadProgram(0x7F00, demoProgram()))
	assert.Equal(uint16(0x7F00), e.ProgramAddr())
	assert.Len(e.Program(), 6)

	require.NoError(t, e.Execute())
	assert.True(e.Halted())
	assert.Equal(uint16(4), e.Reg(hw.AC))
	assert.Equal(uint16(0x8022), e.Reg(hw.R3))
	assert.Equal(uint16(20), e.Reg(hw.PC))

	regs := e.Registers()
	in, flow := e.Step()
	assert.Equal(hw.FlowHalt, flow.Kind)
	assert.Equal(hw.OpHLT, in.Op)
	assert.Equal(regs, e.Registers())
}

func TestLoadROM(t *testing.T) {
	assert := assert.New(t)

	e := powerUp(t, Config{})
	require.NoError(t, e.LoadROM(testROM(t, 2), 0))
	assert.Equal(uint16(0x7F00), e.ProgramAddr())
	assert.Equal(uint16(2), e.Reg(hw.MB))
	assert.Equal(2, e.Mem.Bank())

	require.NoError(t, e.Execute())
	e.Reset()
	assert.False(e.Halted())
	assert.Equal(uint16(0), e.Reg(hw.PC))
	assert.Equal(uint16(0), e.Reg(hw.AC))
	assert.Equal(uint16(2), e.Reg(hw.MB), "bank restored on reset")

	// Region 1 isn't a valid program.
	err := e.LoadROM(testROM(t, 0), 1)
	assert.ErrorIs(err, hw.ErrProgramInvariant)

	var unknown *rom.UnknownRegionError
	assert.ErrorAs(e.LoadROM(testROM(t, 0), 42), &unknown)
}

func TestLoadEntryROM(t *testing.T) {
	e := powerUp(t, Config{Emulation: EmulationConfig{EntryRegion: 1}})
	err := e.LoadEntryROM(testROM(t, rom.AnyBank))
	assert.True(t, errors.Is(err, hw.ErrProgramInvariant), "got %v", err)
}

func TestLoadProgramClearsMemory(t *testing.T) {
	assert := assert.New(t)

	e := powerUp(t, Config{})
	require.NoError(t, e.LoadProgram(0x7F00, demoProgram()))
	e.Mem.Low[0x10] = 0xAA
	e.Mem.Banks[2][0x20] = 0xBB

	// Reset keeps memory.
	e.Reset()
	assert.Equal(uint8(0xAA), e.Mem.Low[0x10])
	assert.Equal(uint8(0xBB), e.Mem.Banks[2][0x20])

	require.NoError(t, e.LoadProgram(0x7F00, demoProgram()))
	assert.Zero(e.Mem.Low[0x10])
	assert.Zero(e.Mem.Banks[2][0x20])
}

func TestTrace(t *testing.T) {
	var out bytes.Buffer
	e := powerUp(t, Config{TraceOut: &out})
	require.NoError(t, e.LoadProgram(0, demoProgram()))
	require.NoError(t, e.Execute())
	assert.Equal(t, 6, bytes.Count(out.Bytes(), []byte("\n")))
}

func TestSnapshot(t *testing.T) {
	assert := assert.New(t)

	e := powerUp(t, Config{})
	require.NoError(t, e.LoadProgram(0x7F00, demoProgram()))
	for i := 0; i < 3; i++ {
		e.Step()
	}
	e.Mem.Low[0x10] = 0xAA
	e.Mem.Banks[3][0x20] = 0xBB

	buf, err := e.SaveSnapshot()
	require.NoError(t, err)

	e2 := powerUp(t, Config{})
	require.NoError(t, e2.LoadSnapshot(buf))
	assert.Equal(e.Registers(), e2.Registers())
	assert.Equal(e.ProgramAddr(), e2.ProgramAddr())
	assert.Equal(e.Program(), e2.Program())
	assert.Equal(uint8(0xAA), e2.Mem.Low[0x10])
	assert.Equal(uint8(0xBB), e2.Mem.Banks[3][0x20])
	assert.False(e2.Halted())

	// Both machines end up in the same state.
	require.NoError(t, e.Execute())
	require.NoError(t, e2.Execute())
	assert.Equal(e.Registers(), e2.Registers())

	assert.Error(e2.LoadSnapshot([]byte(`{"version": 1, "low": ""}`)))
}

func TestConfig(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	cfg, err := LoadConfigOrDefault(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(Config{}, cfg)

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[emulation]
entry_region = 3
trace = true

[debugger]
show_overload = true

[debugger.regviews]
ac = "signed"
R3 = "hex"
zz = "hex"
r1 = "octal"
`), 0644))

	cfg, err = LoadConfigOrDefault(path)
	require.NoError(t, err)
	assert.Equal(uint32(3), cfg.Emulation.EntryRegion)
	assert.True(cfg.Emulation.Trace)
	assert.True(cfg.Debugger.ShowOverload)
	assert.False(cfg.Debugger.JSON)
	assert.Equal(map[string]string{"ac": "signed", "r3": "hex"}, cfg.Debugger.RegViews)

	only := Config{Debugger: DebuggerConfig{RegViews: map[string]string{"R7": "unsigned", "SP": "bin"}}}
	only.Check()
	assert.Equal(map[string]string{"r7": "unsigned"}, only.Debugger.RegViews)

	// Round trip.
	out := filepath.Join(dir, "saved.toml")
	require.NoError(t, SaveConfig(out, cfg))
	saved, err := LoadConfigOrDefault(out)
	require.NoError(t, err)
	assert.Equal(cfg, saved)

	require.NoError(t, os.WriteFile(path, []byte("[emulation\n"), 0644))
	_, err = LoadConfigOrDefault(path)
	assert.Error(err)
}

func BenchmarkExecute(b *testing.B) {
	b.ReportAllocs()

	e := powerUp(b, Config{})
	prog := demoProgram()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := e.LoadProgram(0, prog); err != nil {
			b.Fatal(err)
		}
		if err := e.Execute(); err != nil {
			b.Fatal(err)
		}
	}
}
