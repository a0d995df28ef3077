package debugger

import (
	"fmt"

	"remi16/emu"
)

// RegView is the format a register value is displayed with.
type RegView uint8

const (
	Unsigned RegView = iota
	Signed
	Hex

	numRegViews
)

func (v RegView) String() string {
	if v >= numRegViews {
		return fmt.Sprintf("RegView(%d)", uint8(v))
	}
	return emu.RegViewNames[v]
}

// Next returns the view following v: unsigned, signed, hex, unsigned...
func (v RegView) Next() RegView {
	return (v + 1) % numRegViews
}

// Format formats a register value.
func (v RegView) Format(val uint16) string {
	switch v {
	case Signed:
		return fmt.Sprintf("%d", int16(val))
	case Hex:
		return fmt.Sprintf("$%04x", val)
	}
	return fmt.Sprintf("%d", val)
}

func ParseRegView(s string) (RegView, bool) {
	for i, name := range emu.RegViewNames {
		if name == s {
			return RegView(i), true
		}
	}
	return 0, false
}
