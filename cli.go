package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"remi16/emu/log"
)

type mode byte

const (
	runMode      mode = iota // Run a ROM until halt
	debugMode                // Run a ROM in the debugger
	romInfosMode             // Show ROM infos
	mkromMode                // Write the demo ROM
	versionMode              // Show remi16 version
)

type (
	CLI struct {
		Run      Run      `cmd:"" help:"Run ROM until the CPU halts."`
		Debug    Debug    `cmd:"" help:"Run ROM in the interactive debugger."`
		RomInfos RomInfos `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		Mkrom    Mkrom    `cmd:"" help:"Write the demo program as a ROM."`
		Version  Version  `cmd:"" help:"Show remi16 version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `help:"${config_help}" type:"path" placeholder:"FILE"`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" type:"existingfile"`

		Region int64    `name:"region" help:"${region_help}" default:"-1"`
		Trace  *outfile `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		State  *outfile `name:"state" help:"Write the machine state once halted, as JSON." placeholder:"FILE|stdout|stderr"`
	}

	Debug struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" type:"existingfile"`

		Region int64 `name:"region" help:"${region_help}" default:"-1"`
		JSON   bool  `name:"json" help:"Report debugger state as JSON events."`
	}

	RomInfos struct {
		RomPaths []string `arg:"" name:"/path/to/rom" type:"existingfile"`
	}

	Mkrom struct {
		Out string `arg:"" name:"/path/to/out" help:"ROM file to create." type:"path"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"rompath_help": "ROM file to load.",
	"region_help":  "ROM region holding the program (default: emulation.entry_region from config).",
	"config_help":  "Configuration file (default: config.toml in the user config directory).",
	"log_help":     "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("remi16"),
		kong.Description("sakuya16c virtual machine and debugger."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	cmd, _, _ := strings.Cut(ctx.Command(), " ")
	switch cmd {
	case "debug":
		cfg.mode = debugMode
	case "rom-infos":
		cfg.mode = romInfosMode
	case "mkrom":
		cfg.mode = mkromMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") || strings.HasPrefix(ctx.Command(), "debug") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	mask, err := parseLogModules(ctx.Scan.Pop().Value.(string))
	if err != nil {
		return err
	}
	if mask == 0 {
		log.Disable()
		return nil
	}
	log.EnableDebugModules(mask)
	return nil
}

// parseLogModules parses the --log flag value. A zero mask means 'no'.
func parseLogModules(s string) (log.ModuleMask, error) {
	nolog := false
	allLogs := false

	var mask log.ModuleMask
	for _, v := range strings.Split(s, ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return 0, fmt.Errorf("unknown log module %s", v)
			}
			mask |= mod.Mask()
		}
	}

	if nolog {
		if allLogs {
			return 0, fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return 0, fmt.Errorf("cannot combine 'no' with other log modules")
		}
		return 0, nil
	}

	if allLogs {
		mask = log.ModuleMaskAll
	}
	return mask, nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
