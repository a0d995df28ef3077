package main

import (
	"testing"

	"remi16/emu/log"
)

func TestParseLogModules(t *testing.T) {
	tests := []struct {
		val     string
		want    log.ModuleMask
		wantErr bool
	}{
		{val: "cpu", want: log.ModCPU.Mask()},
		{val: "cpu,hwio", want: log.ModCPU.Mask() | log.ModHwIo.Mask()},
		{val: "all", want: log.ModuleMaskAll},
		{val: "no", want: 0},
		{val: "no,all", wantErr: true},
		{val: "no,cpu", wantErr: true},
		{val: "bogus", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.val, func(t *testing.T) {
			got, err := parseLogModules(tt.val)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLogModules(%q) error = %v, wantErr %t", tt.val, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLogModules(%q) = %x, want %x", tt.val, got, tt.want)
			}
		})
	}

	// Modules declared by other packages.
	for _, name := range []string{"rom", "debugger"} {
		if _, err := parseLogModules(name); err != nil {
			t.Errorf("parseLogModules(%q): %v", name, err)
		}
	}
}
