package debugger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-faster/jx"
	"golang.org/x/term"

	"remi16/hw"
)

var errQuit = errors.New("quit")

type handlerFunc func(args []string) error

type command struct {
	names []string
	usage string
	fn    handlerFunc
}

// A Driver reads debugger commands, one per line, and writes their output.
type Driver struct {
	dbg  *Debugger
	in   io.Reader
	out  io.Writer
	json bool // report state as JSON events
	tty  bool // show a prompt

	cmds     []command
	handlers map[string]handlerFunc
}

// NewDriver creates a driver reading commands from in. A prompt is shown only
// if in is a terminal.
func NewDriver(dbg *Debugger, in io.Reader, out io.Writer, json bool) *Driver {
	d := &Driver{
		dbg:      dbg,
		in:       in,
		out:      out,
		json:     json,
		handlers: make(map[string]handlerFunc),
	}
	if f, ok := in.(*os.File); ok {
		d.tty = term.IsTerminal(int(f.Fd()))
	}

	d.cmds = []command{
		{[]string{"step", "s"}, "step [N]      execute N instructions (default 1)", d.handleStep},
		{[]string{"run", "c"}, "run           execute until halt or fault", d.handleRun},
		{[]string{"reset", "r"}, "reset         reset registers and rewind the program", d.handleReset},
		{[]string{"regs"}, "regs          show registers", d.handleRegs},
		{[]string{"view"}, "view REG [V]  cycle or set register view (unsigned, signed, hex)", d.handleView},
		{[]string{"list", "l"}, "list          show program listing", d.handleList},
		{[]string{"state"}, "state         show state as JSON", d.handleState},
		{[]string{"help", "h"}, "help          show this help", d.handleHelp},
		{[]string{"quit", "q"}, "quit          exit the debugger", d.handleQuit},
	}
	for _, c := range d.cmds {
		for _, name := range c.names {
			d.handlers[name] = c.fn
		}
	}
	return d
}

// Run processes commands until quit or end of input.
func (d *Driver) Run() error {
	modDbg.DebugZ("debugger session started").Bool("tty", d.tty).Bool("json", d.json).End()

	d.report()

	sc := bufio.NewScanner(d.in)
	for {
		if d.tty {
			fmt.Fprint(d.out, "(remi16) ")
		}
		if !sc.Scan() {
			return sc.Err()
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		handler, ok := d.handlers[fields[0]]
		if !ok {
			modDbg.DebugZ("unknown command").String("cmd", fields[0]).End()
			fmt.Fprintf(d.out, "unknown command %q, type 'help'\n", fields[0])
			continue
		}

		err := handler(fields[1:])
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(d.out, "error: %v\n", err)
		}
	}
}

// report shows the current state, as a JSON event or as text.
func (d *Driver) report() {
	if d.json {
		d.writeState()
		return
	}
	if in, ok := d.dbg.emu.Engine.Current(); ok {
		addr := d.dbg.emu.ProgramAddr() + d.dbg.emu.Reg(hw.PC)
		fmt.Fprintf(d.out, "%04X  %s\n", addr, hw.Disasm(in, d.dbg.ShowOverload))
	}
}

func (d *Driver) writeState() {
	var e jx.Encoder
	d.dbg.EncodeState(&e)
	fmt.Fprintln(d.out, string(e.Bytes()))
}

func (d *Driver) checkRunnable() bool {
	if d.dbg.Halted() {
		fmt.Fprintln(d.out, "program halted")
		return false
	}
	return true
}

func (d *Driver) handleStep(args []string) error {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		n = v
	}
	if !d.checkRunnable() {
		return nil
	}

	for i := 0; i < n; i++ {
		_, flow := d.dbg.Step()
		switch flow.Kind {
		case hw.FlowHalt:
			fmt.Fprintln(d.out, "program halted")
			d.report()
			return nil
		case hw.FlowFault:
			d.report()
			return flow.Err
		}
	}
	d.report()
	return nil
}

func (d *Driver) handleRun(args []string) error {
	if !d.checkRunnable() {
		return nil
	}
	err := d.dbg.Run()
	if err == nil {
		fmt.Fprintln(d.out, "program halted")
	}
	d.report()
	return err
}

func (d *Driver) handleReset(args []string) error {
	d.dbg.Reset()
	d.report()
	return nil
}

func (d *Driver) handleRegs(args []string) error {
	for i := 0; i < hw.NumRegs; i++ {
		r := hw.Reg(i)
		fmt.Fprintf(d.out, "%-3s %-8s", r, d.dbg.FormatReg(r))
		if i%4 == 3 {
			fmt.Fprintln(d.out)
		} else {
			fmt.Fprint(d.out, " ")
		}
	}
	return nil
}

func (d *Driver) handleView(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("usage: view REG [unsigned|signed|hex]")
	}
	r, ok := hw.RegByName(args[0])
	if !ok {
		return fmt.Errorf("unknown register %q", args[0])
	}

	if len(args) == 1 {
		d.dbg.CycleView(r)
	} else {
		v, ok := ParseRegView(args[1])
		if !ok {
			return fmt.Errorf("unknown view %q", args[1])
		}
		d.dbg.Views[r] = v
	}
	fmt.Fprintf(d.out, "%s (%s) = %s\n", r, d.dbg.Views[r], d.dbg.FormatReg(r))
	return nil
}

func (d *Driver) handleList(args []string) error {
	d.dbg.WriteListing(d.out)
	return nil
}

func (d *Driver) handleState(args []string) error {
	d.writeState()
	return nil
}

func (d *Driver) handleHelp(args []string) error {
	fmt.Fprintln(d.out, "commands:")
	for _, c := range d.cmds {
		aliases := ""
		if len(c.names) > 1 {
			aliases = " (" + strings.Join(c.names[1:], ", ") + ")"
		}
		fmt.Fprintf(d.out, "  %s%s\n", c.usage, aliases)
	}
	return nil
}

func (d *Driver) handleQuit(args []string) error {
	return errQuit
}
