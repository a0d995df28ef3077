package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"remi16/asm"
	"remi16/emu"
	"remi16/emu/debugger"
	"remi16/rom"
)

// loadEmulator opens the ROM at path and loads its program region into a new
// emulator. A negative region selects the configured entry region.
func loadEmulator(path string, region int64, cfg emu.Config) (*emu.Emulator, func(), error) {
	r, err := rom.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading ROM: %w", err)
	}

	e, err := emu.PowerUp(cfg)
	if err != nil {
		r.Close()
		return nil, nil, err
	}

	if region >= 0 {
		err = e.LoadROM(r, uint32(region))
	} else {
		err = e.LoadEntryROM(r)
	}
	if err != nil {
		e.Close()
		r.Close()
		return nil, nil, err
	}

	cleanup := func() {
		e.Close()
		r.Close()
	}
	return e, cleanup, nil
}

// runMain runs the program until it halts.
func runMain(args Run, cfg emu.Config) error {
	if args.Trace != nil {
		defer args.Trace.Close()
		cfg.TraceOut = args.Trace
	} else if cfg.Emulation.Trace {
		cfg.TraceOut = os.Stderr
	}

	e, cleanup, err := loadEmulator(args.RomPath, args.Region, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := e.Execute(); err != nil {
		return err
	}

	if args.State != nil {
		defer args.State.Close()

		state, err := e.SaveSnapshot()
		if err != nil {
			return fmt.Errorf("failed to save state: %w", err)
		}
		if _, err := args.State.Write(append(state, '\n')); err != nil {
			return err
		}
	}

	fmt.Println(e.CPU)
	return nil
}

// debugMain runs the interactive debugger on stdin/stdout.
func debugMain(args Debug, cfg emu.Config) error {
	e, cleanup, err := loadEmulator(args.RomPath, args.Region, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	dbg := debugger.New(e, cfg.Debugger)
	drv := debugger.NewDriver(dbg, os.Stdin, os.Stdout, args.JSON || cfg.Debugger.JSON)
	return drv.Run()
}

// romInfos prints infos about all given ROMs. ROMs are read concurrently but
// their infos are printed in order.
func romInfos(w io.Writer, paths []string) error {
	var (
		mu    sync.Mutex
		infos = make([]string, len(paths))
		errs  []string
	)

	var g errgroup.Group
	g.SetLimit(4)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			r, err := rom.Open(path)
			if err != nil {
				mu.Lock()
				errs = append(errs, err.Error())
				mu.Unlock()
				return err
			}
			defer r.Close()

			var buf bytes.Buffer
			fmt.Fprintf(&buf, "%s:\n", path)
			r.PrintInfos(&buf)
			infos[i] = buf.String()
			return nil
		})
	}
	err := g.Wait()

	for _, s := range infos {
		if s != "" {
			fmt.Fprint(w, s)
		}
	}
	if len(errs) > 1 {
		return fmt.Errorf("%d ROMs failed:\n%s", len(errs), strings.Join(errs, "\n"))
	}
	return err
}

func mkrom(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := asm.WriteDemoROM(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
