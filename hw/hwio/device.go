package hwio

import "remi16/emu/log"

type RWFlags uint8

const (
	ReadWriteFlag RWFlags = 0
	ReadOnlyFlag  RWFlags = (1 << iota)
	WriteOnlyFlag
)

// Device is a Mapper implementation that forwards accesses to callbacks,
// allowing to plug a peripheral on the bus without defining a new type.
type Device struct {
	DevName    string // name of the device (for debugging)
	Start, End uint16 // inclusive address range
	Remapped   bool   // callbacks receive addresses relative to Start
	Flags      RWFlags

	ReadCb  func(addr uint16) uint8
	WriteCb func(addr uint16, val uint8)
}

func (d *Device) Name() string               { return d.DevName }
func (d *Device) Range() (start, end uint16) { return d.Start, d.End }
func (d *Device) Remap() bool                { return d.Remapped }

func (d *Device) Read8(addr uint16) uint8 {
	switch {
	case d.Flags&WriteOnlyFlag != 0:
		log.ModHwIo.ErrorZ("invalid Read8 from writeonly device").
			String("name", d.DevName).
			Hex16("addr", addr).
			End()
		fallthrough
	case d.ReadCb == nil:
		return 0
	}
	return d.ReadCb(addr)
}

func (d *Device) Write8(addr uint16, val uint8) {
	switch {
	case d.Flags&ReadOnlyFlag != 0:
		log.ModHwIo.ErrorZ("invalid Write8 to readonly device").
			String("name", d.DevName).
			Hex16("addr", addr).
			End()
		fallthrough
	case d.WriteCb == nil:
		return
	}

	d.WriteCb(addr, val)
}
