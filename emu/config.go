package emu

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"remi16/emu/log"
	"remi16/hw"
)

type Config struct {
	Emulation EmulationConfig `toml:"emulation"`
	Debugger  DebuggerConfig  `toml:"debugger"`

	TraceOut io.Writer `toml:"-"`
}

type EmulationConfig struct {
	// ROM region holding the program to run.
	EntryRegion uint32 `toml:"entry_region"`
	Trace       bool   `toml:"trace"`
}

type DebuggerConfig struct {
	ShowOverload bool `toml:"show_overload"`
	JSON         bool `toml:"json"`

	// Initial register views, register name -> view name.
	RegViews map[string]string `toml:"regviews"`
}

// RegViewNames are the valid register view names, in cycling order.
var RegViewNames = []string{"unsigned", "signed", "hex"}

// Check drops invalid register views and lowercases register names.
func (cfg *Config) Check() {
	if cfg.Debugger.RegViews == nil {
		return
	}
	views := make(map[string]string, len(cfg.Debugger.RegViews))
	for name, view := range cfg.Debugger.RegViews {
		r, ok := hw.RegByName(name)
		if !ok {
			log.ModEmu.Warnf("Invalid register %q in debugger views, ignored", name)
			continue
		}
		if !slices.Contains(RegViewNames, view) {
			log.ModEmu.Warnf("Invalid view %q for register %s, ignored (valid views: %s)", view, name, strings.Join(RegViewNames, ", "))
			continue
		}
		views[r.String()] = view
	}
	cfg.Debugger.RegViews = views
}

const DefaultFileMode = os.FileMode(0755)

var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModEmu.Fatalf("failed to get user config directory: %v", err)
	}

	dir := filepath.Join(cfgdir, "remi16")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// DefaultConfigPath is the path of the configuration file in the remi16
// config directory.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), cfgFilename)
}

// LoadConfigOrDefault loads the configuration at path, or returns the default
// one if there's no file at path.
func LoadConfigOrDefault(path string) (Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		log.ModEmu.DebugZ("no config file, using default").String("path", path).End()
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	cfg.Check()
	return cfg, nil
}

// SaveConfig writes cfg at path.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, buf, 0644)
}
