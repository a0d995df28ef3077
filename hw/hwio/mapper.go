package hwio

// A Mapper is a device owning an inclusive sub-range of the 16-bit address
// space, accessed one byte at a time.
type Mapper interface {
	// Name of the device (for debugging).
	Name() string
	// Range returns the first and last address claimed by the device.
	Range() (start, end uint16)
	// Remap reports whether the device wants device-local addresses: when
	// true, the bus subtracts the range start before forwarding an access.
	Remap() bool

	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)
}

// local converts an absolute bus address into the address m expects.
func local(m Mapper, addr uint16) uint16 {
	if m.Remap() {
		start, _ := m.Range()
		return addr - start
	}
	return addr
}

func claims(m Mapper, addr uint16) bool {
	start, end := m.Range()
	return addr >= start && addr <= end
}

// checkWord verifies that the 2 bytes of a 16-bit access at addr both belong
// to m.
func checkWord(m Mapper, addr uint16) error {
	if addr == 0xFFFF {
		return &BusFault{Addr: addr, Device: m.Name(), Reason: "16-bit access at end of address space"}
	}
	if !claims(m, addr) || !claims(m, addr+1) {
		return &BusFault{Addr: addr, Device: m.Name(), Reason: "second byte out of device range"}
	}
	return nil
}

// Read16 reads a little-endian 16-bit value from m at addr (absolute bus
// address), composed of the 8-bit reads at addr and addr+1.
func Read16(m Mapper, addr uint16) (uint16, error) {
	if err := checkWord(m, addr); err != nil {
		return 0, err
	}
	lo := m.Read8(local(m, addr))
	hi := m.Read8(local(m, addr+1))
	return uint16(hi)<<8 | uint16(lo), nil
}

// Write16 writes val to m at addr (absolute bus address), low byte first.
// Nothing is written if the access faults.
func Write16(m Mapper, addr uint16, val uint16) error {
	if err := checkWord(m, addr); err != nil {
		return err
	}
	lo := uint8(val & 0xff)
	hi := uint8(val >> 8)
	m.Write8(local(m, addr), lo)
	m.Write8(local(m, addr+1), hi)
	return nil
}
