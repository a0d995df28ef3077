package hw

import (
	"testing"

	"remi16/hw/hwio"
)

func newTestEngine(tb testing.TB, instrs ...Instr) (*Engine, *Memory) {
	tb.Helper()

	cpu := NewCPU()
	mem := NewMemory(cpu)
	e := NewEngine(cpu, hwio.NewBus("test", mem))
	if len(instrs) != 0 {
		if err := e.Load(0, EncodeProgram(instrs...)); err != nil {
			tb.Fatalf("load: %v", err)
		}
	}
	return e, mem
}

func demoProgram() []Instr {
	return []Instr{
		Nop(),
		MovLitReg(2, R1),
		MovLitReg(2, R2),
		MovLitReg(WordFromInt16(-32734), R3),
		AddRegReg(R1, R2),
		Hlt(),
	}
}
