package main

import (
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/buildinfo"

	"remi16/emu"
)

var (
	version = "0.1.0"
	commit  = ""
	date    = ""
)

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case versionMode:
		fmt.Printf("remi16 version %s\n", buildinfo.Version(version, commit, date))
		return
	case romInfosMode:
		checkf(romInfos(os.Stdout, cli.RomInfos.RomPaths), "failed to read ROM infos")
		return
	case mkromMode:
		checkf(mkrom(cli.Mkrom.Out), "failed to write ROM")
		return
	}

	cfgpath := cli.Config
	if cfgpath == "" {
		cfgpath = emu.DefaultConfigPath()
	}
	cfg, err := emu.LoadConfigOrDefault(cfgpath)
	checkf(err, "failed to load config %s", cfgpath)

	switch cli.mode {
	case runMode:
		checkf(runMain(cli.Run, cfg), "run failed")
	case debugMode:
		checkf(debugMain(cli.Debug, cfg), "debugger failed")
	}
}
