package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gopkg.in/Sirupsen/logrus.v0"
)

type pcContext uint16

func (pc pcContext) AddLogContext(z *EntryZ) { z.Hex16("pc", uint16(pc)) }

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	disabled = false
	t.Cleanup(func() {
		modDebugMask = 0
		contexts = nil
	})
	return &buf
}

func TestModuleEnabled(t *testing.T) {
	capture(t)

	if !ModCPU.Enabled(WarnLevel) || !ModCPU.Enabled(ErrorLevel) {
		t.Errorf("warnings and errors should always be enabled")
	}
	if ModCPU.Enabled(DebugLevel) || ModCPU.Enabled(InfoLevel) {
		t.Errorf("debug logs should be disabled by default")
	}

	EnableDebugModules(ModCPU.Mask())
	if !ModCPU.Enabled(DebugLevel) {
		t.Errorf("cpu debug logs should be enabled")
	}
	if ModMem.Enabled(DebugLevel) {
		t.Errorf("mem debug logs should be disabled")
	}

	DisableDebugModules(ModCPU.Mask())
	if ModCPU.Enabled(DebugLevel) {
		t.Errorf("cpu debug logs should be disabled")
	}
}

func TestModuleByName(t *testing.T) {
	mod := NewModule("testmod")
	got, ok := ModuleByName("testmod")
	if !ok || got != mod {
		t.Fatalf("ModuleByName(testmod) = %v, %t", got, ok)
	}
	if mod.String() != "testmod" {
		t.Errorf("String() = %q, want testmod", mod.String())
	}
	if _, ok := ModuleByName("<error>"); ok {
		t.Errorf("ModuleByName(<error>) should fail")
	}

	names := ModuleNames()
	if names[0] != "emu" || names[len(names)-1] != "testmod" {
		t.Errorf("ModuleNames() = %v", names)
	}
}

func TestEntryZ(t *testing.T) {
	buf := capture(t)

	// Disabled level, nothing is allocated nor written.
	if z := ModHwIo.DebugZ("nope"); z != nil {
		t.Fatalf("DebugZ() = %v, want nil", z)
	}
	ModHwIo.DebugZ("nope").Hex16("addr", 1).Error("err", errors.New("x")).End()
	if buf.Len() != 0 {
		t.Fatalf("unexpected output %q", buf.String())
	}

	AddContext(pcContext(0x14))
	ModHwIo.WarnZ("bus fault").
		Hex16("addr", 0xFFFF).
		Hex8("val", 0x2a).
		String("dev", "MEMORY").
		Bool("remap", true).
		Error("err", errors.New("boom")).
		End()

	out := buf.String()
	for _, want := range []string{"bus fault", "addr=ffff", "val=2a", "dev=MEMORY", "remap=true", "err=boom", "pc=0014", "_mod=hwio"} {
		if !strings.Contains(out, want) {
			t.Errorf("output doesn't contain %q: %s", want, out)
		}
	}

	buf.Reset()
	RemoveContext(pcContext(0x14))
	ModHwIo.Warnf("value %d", 42)
	if out := buf.String(); !strings.Contains(out, "value 42") || strings.Contains(out, "pc=") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestPrintfContext(t *testing.T) {
	buf := capture(t)

	AddContext(pcContext(0x7F0C))
	ModEmu.Errorf("bad register %s", "r9")
	out := buf.String()
	for _, want := range []string{"bad register r9", "pc=7f0c", "_mod=emu", "level=error"} {
		if !strings.Contains(out, want) {
			t.Errorf("output doesn't contain %q: %s", want, out)
		}
	}
}

func TestDisable(t *testing.T) {
	buf := capture(t)
	t.Cleanup(func() { disabled = false })

	EnableDebugModules(ModuleMaskAll)
	Disable()
	SetOutput(buf)

	ModEmu.ErrorZ("silenced").End()
	ModEmu.Errorf("silenced")
	if buf.Len() != 0 {
		t.Errorf("unexpected output after Disable: %q", buf.String())
	}
}
