package hwio

import (
	"fmt"

	"remi16/emu/log"
)

// Split is the address above which only the main memory device is mapped.
const Split = 0x8000

// Bus routes byte and word accesses to the device owning the address.
//
// Devices[0] is the main memory device; it covers the whole address space and
// serves as a fallback. Other devices overlay it below Split: they're scanned
// in mapping order and the first one claiming the address wins.
type Bus struct {
	Name string

	devices []Mapper
}

// NewBus creates a bus with mem as its main memory device.
func NewBus(name string, mem Mapper) *Bus {
	return &Bus{Name: name, devices: []Mapper{mem}}
}

// Map adds a device to the bus. Devices can't claim addresses above Split
// since those are reserved to the main memory.
func (b *Bus) Map(m Mapper) error {
	start, end := m.Range()
	if start > end {
		return fmt.Errorf("device %s: invalid range $%04X-$%04X", m.Name(), start, end)
	}
	if end > Split {
		return fmt.Errorf("device %s: range $%04X-$%04X overlaps banked memory (above $%04X)", m.Name(), start, end, Split)
	}

	log.ModHwIo.DebugZ("mapping device").
		String("bus", b.Name).
		String("device", m.Name()).
		Hex16("start", start).
		Hex16("end", end).
		Bool("remap", m.Remap()).
		End()

	b.devices = append(b.devices, m)
	return nil
}

// Devices returns the mapped devices, main memory first.
func (b *Bus) Devices() []Mapper {
	return b.devices
}

// FindDevice returns the device owning addr.
func (b *Bus) FindDevice(addr uint16) (Mapper, error) {
	if len(b.devices) == 0 {
		return nil, &BusFault{Addr: addr, Reason: "no device mapped"}
	}
	if addr > Split {
		return b.devices[0], nil
	}
	for _, m := range b.devices[1:] {
		if claims(m, addr) {
			return m, nil
		}
	}
	if claims(b.devices[0], addr) {
		return b.devices[0], nil
	}

	log.ModHwIo.ErrorZ("unmapped access").
		String("bus", b.Name).
		Hex16("addr", addr).
		End()
	return nil, &BusFault{Addr: addr, Reason: "no device claims address"}
}

func (b *Bus) Read8(addr uint16) (uint8, error) {
	m, err := b.FindDevice(addr)
	if err != nil {
		return 0, err
	}
	return m.Read8(local(m, addr)), nil
}

func (b *Bus) Write8(addr uint16, val uint8) error {
	m, err := b.FindDevice(addr)
	if err != nil {
		return err
	}
	m.Write8(local(m, addr), val)
	return nil
}

// Read16 reads a 16-bit value at addr. Both bytes are read from the device
// owning addr.
func (b *Bus) Read16(addr uint16) (uint16, error) {
	m, err := b.FindDevice(addr)
	if err != nil {
		return 0, err
	}
	val, err := Read16(m, addr)
	if err != nil {
		b.logFault(err)
	}
	return val, err
}

// Write16 writes a 16-bit value at addr. On fault, nothing is written.
func (b *Bus) Write16(addr uint16, val uint16) error {
	m, err := b.FindDevice(addr)
	if err != nil {
		return err
	}
	if err := Write16(m, addr, val); err != nil {
		b.logFault(err)
		return err
	}
	return nil
}

func (b *Bus) logFault(err error) {
	log.ModHwIo.DebugZ("bus fault").
		String("bus", b.Name).
		Error("err", err).
		End()
}
