package debugger

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"remi16/emu"
	"remi16/emu/log"
	"remi16/hw"
)

func init() {
	log.Disable()
}

func newTestDebugger(t *testing.T, cfg emu.DebuggerConfig) *Debugger {
	t.Helper()

	e, err := emu.PowerUp(emu.Config{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)

	prog := hw.EncodeProgram(
		hw.Nop(),
		hw.MovLitReg(2, hw.R1),
		hw.MovLitReg(2, hw.R2),
		hw.MovLitReg(hw.WordFromInt16(-32734), hw.R3),
		hw.AddRegReg(hw.R1, hw.R2),
		hw.Hlt(),
	)
	if err := e.LoadProgram(0x7F00, prog); err != nil {
		t.Fatal(err)
	}
	return New(e, cfg)
}

func TestRegView(t *testing.T) {
	tests := []struct {
		view RegView
		val  uint16
		want string
	}{
		{Unsigned, 0x8022, "32802"},
		{Signed, 0x8022, "-32734"},
		{Signed, 0xFFFF, "-1"},
		{Hex, 0x8022, "$8022"},
		{Signed, 4, "4"},
		{Hex, 4, "$0004"},
	}
	for _, tt := range tests {
		if got := tt.view.Format(tt.val); got != tt.want {
			t.Errorf("%s.Format(%#x) = %q, want %q", tt.view, tt.val, got, tt.want)
		}
	}

	got := []RegView{Unsigned.Next(), Signed.Next(), Hex.Next()}
	want := []RegView{Signed, Hex, Unsigned}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Next() mismatch (-want +got):\n%s", diff)
	}

	for _, name := range emu.RegViewNames {
		v, ok := ParseRegView(name)
		if !ok || v.String() != name {
			t.Errorf("ParseRegView(%q) = %v, %t", name, v, ok)
		}
	}
}

func TestViewsArePerSession(t *testing.T) {
	dbg1 := newTestDebugger(t, emu.DebuggerConfig{RegViews: map[string]string{"r3": "signed"}})
	dbg2 := newTestDebugger(t, emu.DebuggerConfig{})

	if err := dbg1.Run(); err != nil {
		t.Fatal(err)
	}
	if err := dbg2.Run(); err != nil {
		t.Fatal(err)
	}

	dbg2.CycleView(hw.AC)
	dbg2.CycleView(hw.AC)

	if got := dbg1.FormatReg(hw.R3); got != "-32734" {
		t.Errorf("dbg1 r3 = %q, want -32734", got)
	}
	if got := dbg2.FormatReg(hw.R3); got != "32802" {
		t.Errorf("dbg2 r3 = %q, want 32802", got)
	}
	if dbg1.Views[hw.AC] != Unsigned || dbg2.Views[hw.AC] != Hex {
		t.Errorf("ac views = %s, %s; want unsigned, hex", dbg1.Views[hw.AC], dbg2.Views[hw.AC])
	}
}

func TestViewsRegisterNamesIgnoreCase(t *testing.T) {
	dbg := newTestDebugger(t, emu.DebuggerConfig{RegViews: map[string]string{"R3": "signed", "Ac": "hex", "zz": "hex"}})
	if err := dbg.Run(); err != nil {
		t.Fatal(err)
	}
	if got := dbg.FormatReg(hw.R3); got != "-32734" {
		t.Errorf("r3 = %q, want -32734", got)
	}
	if got := dbg.FormatReg(hw.AC); got != "$0004" {
		t.Errorf("ac = %q, want $0004", got)
	}
}

func TestListing(t *testing.T) {
	dbg := newTestDebugger(t, emu.DebuggerConfig{})
	dbg.Step()
	dbg.Step()

	var sb strings.Builder
	dbg.WriteListing(&sb)

	want := []string{
		"  7F00  00 00 00 00  nop",
		"  7F04  02 02 00 09  mov $0002, #r1",
		"> 7F08  02 02 00 0A  mov $0002, #r2",
		"  7F0C  02 22 80 0B  mov $8022, #r3",
		"  7F10  03 09 0A 00  add #r1, #r2",
		"  7F14  01 00 00 00  hlt",
	}
	got := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}

	dbg.ShowOverload = true
	if l := dbg.Listing()[3]; l.Disasm != "mov_lit_reg $8022, #r3" {
		t.Errorf("overloaded disasm = %q", l.Disasm)
	}
}

type stateEvent struct {
	Event string `json:"event"`
	Data  struct {
		Status string            `json:"status"`
		PC     uint16            `json:"pc"`
		Addr   uint16            `json:"addr"`
		Instr  string            `json:"instr"`
		Error  string            `json:"error"`
		Regs   map[string]string `json:"regs"`
	} `json:"data"`
}

func parseState(t *testing.T, line string) stateEvent {
	t.Helper()

	var ev stateEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		t.Fatalf("invalid state event %q: %v", line, err)
	}
	return ev
}

func TestDriver(t *testing.T) {
	dbg := newTestDebugger(t, emu.DebuggerConfig{})

	in := strings.NewReader(`
step 2
view r3 signed
bogus
run
step
s
regs
reset
list
quit
step
`)
	var out strings.Builder
	if err := NewDriver(dbg, in, &out, false).Run(); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{
		"7F00  nop\n",
		"7F08  mov $0002, #r2\n",
		"r3 (signed) = 0\n",
		`unknown command "bogus"`,
		"program halted\n7F14  hlt\n",
		"r3  -32734",
		"ac  4",
		"> 7F00  00 00 00 00  nop",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output doesn't contain %q:\n%s", want, got)
		}
	}

	// step and s after halt, plus run's message.
	if n := strings.Count(got, "program halted"); n != 3 {
		t.Errorf("'program halted' printed %d times, want 3:\n%s", n, got)
	}
	if dbg.Halted() {
		t.Errorf("debugger should not be halted after reset")
	}
}

func TestDriverJSON(t *testing.T) {
	dbg := newTestDebugger(t, emu.DebuggerConfig{RegViews: map[string]string{"pc": "hex"}})

	in := strings.NewReader("step\nrun\nstate\n")
	var out strings.Builder
	if err := NewDriver(dbg, in, &out, true).Run(); err != nil {
		t.Fatal(err)
	}

	var events []stateEvent
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if !strings.HasPrefix(line, "{") {
			continue
		}
		events = append(events, parseState(t, line))
	}
	if len(events) != 4 {
		t.Fatalf("got %d state events, want 4:\n%s", len(events), out.String())
	}

	first, last := events[0], events[3]
	if first.Data.Status != "paused" || first.Data.PC != 0 || first.Data.Addr != 0x7F00 || first.Data.Instr != "nop" {
		t.Errorf("first event = %+v", first.Data)
	}
	if last.Event != "state" || last.Data.Status != "halted" || last.Data.PC != 20 || last.Data.Instr != "hlt" {
		t.Errorf("last event = %+v", last.Data)
	}
	if last.Data.Regs["pc"] != "$0014" || last.Data.Regs["ac"] != "4" {
		t.Errorf("last event regs = %v", last.Data.Regs)
	}
}

func TestDriverFault(t *testing.T) {
	e, err := emu.PowerUp(emu.Config{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	prog := hw.EncodeProgram(hw.MovRegMem(hw.R0, 0xFFFF), hw.Hlt())
	if err := e.LoadProgram(0, prog); err != nil {
		t.Fatal(err)
	}
	dbg := New(e, emu.DebuggerConfig{})

	var out strings.Builder
	if err := NewDriver(dbg, strings.NewReader("run\nstate\n"), &out, false).Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "error: ") || !strings.Contains(out.String(), `"status":"faulted"`) {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}
