package hw

import "remi16/emu/log"

const (
	NumBanks = 4

	lowSize  = 0x8000 // $0000-$7FFF, shared by all banks
	bankSize = 0x8000 // $8000-$FFFF, one copy per bank
	highBase = 0x8000
)

// BankSelector provides the active memory bank.
type BankSelector interface {
	Bank() uint16
}

// Memory is the console main RAM. The low half is shared, the high half is
// switched between NumBanks banks by the mb register; the bank is looked up
// at each access so switching banks takes effect immediately.
type Memory struct {
	Low   [lowSize]uint8
	Banks [NumBanks][bankSize]uint8

	sel BankSelector
}

// NewMemory creates the RAM, its banks being selected by sel (usually the
// CPU).
func NewMemory(sel BankSelector) *Memory {
	return &Memory{sel: sel}
}

func (m *Memory) Name() string               { return "MEMORY" }
func (m *Memory) Range() (start, end uint16) { return 0x0000, 0xFFFF }
func (m *Memory) Remap() bool                { return false }

// Bank returns the index of the active high bank.
func (m *Memory) Bank() int {
	return int(m.sel.Bank() % NumBanks)
}

func (m *Memory) Read8(addr uint16) uint8 {
	if addr < highBase {
		return m.Low[addr]
	}
	return m.Banks[m.Bank()][addr-highBase]
}

func (m *Memory) Write8(addr uint16, val uint8) {
	if addr < highBase {
		m.Low[addr] = val
		return
	}
	m.Banks[m.Bank()][addr-highBase] = val
}

// Clear zeroes the whole memory, all banks included.
func (m *Memory) Clear() {
	log.ModMem.DebugZ("clearing memory").End()
	clear(m.Low[:])
	for i := range m.Banks {
		clear(m.Banks[i][:])
	}
}
