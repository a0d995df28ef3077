// Package rom implements a reader for remi16 ROM files: a small header, a
// directory of regions and the region payloads.
package rom

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"remi16/emu/log"
)

var modROM = log.NewModule("rom")

const Magic = "\x7fr16"

const (
	headerSize = 8
	entrySize  = 16
)

// AnyBank is the bank value of a region not bound to a particular bank.
const AnyBank = 0xFFFF

type Header struct {
	Major, Minor uint8
}

// Region is a ROM directory entry.
type Region struct {
	ID       uint32
	Offset   uint32 // offset of the payload from the start of the file
	Size     uint16
	LoadAt   uint16 // preferred load address, 0 if unconstrained
	Bank     uint16 // preferred bank, AnyBank if unconstrained
	Reserved uint16
}

// Rom gives access to the regions of a ROM file. Payloads are read on first
// access and cached.
type Rom struct {
	Header

	r       io.ReaderAt
	closer  io.Closer
	size    int64
	regions []Region
	cache   map[uint32][]byte
}

// Open opens a ROM file. The file stays open until Close is called.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	rom, err := New(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	rom.closer = f
	return rom, nil
}

// New reads the header and directory of the size-byte ROM accessible
// through r.
func New(r io.ReaderAt, size int64) (*Rom, error) {
	rom := &Rom{
		r:     r,
		size:  size,
		cache: make(map[uint32][]byte),
	}
	if err := rom.decode(); err != nil {
		return nil, err
	}

	modROM.DebugZ("loaded rom").
		Uint8("major", rom.Major).
		Uint8("minor", rom.Minor).
		Int("regions", len(rom.regions)).
		End()
	return rom, nil
}

func (rom *Rom) decode() error {
	var hdr [headerSize]byte
	if err := readAt(rom.r, hdr[:], 0); err != nil {
		return &MalformedError{Reason: "truncated header", Err: err}
	}
	if string(hdr[:4]) != Magic {
		return &MalformedError{Reason: fmt.Sprintf("invalid magic number % x", hdr[:4])}
	}
	rom.Major = hdr[4]
	rom.Minor = hdr[5]
	count := int(binary.LittleEndian.Uint16(hdr[6:]))

	dir := make([]byte, count*entrySize)
	if err := readAt(rom.r, dir, headerSize); err != nil {
		return &MalformedError{Reason: fmt.Sprintf("truncated directory (%d regions)", count), Err: err}
	}

	rom.regions = make([]Region, count)
	seen := make(map[uint32]bool, count)
	for i := range rom.regions {
		e := dir[i*entrySize:]
		reg := Region{
			ID:       binary.LittleEndian.Uint32(e[0:]),
			Offset:   binary.LittleEndian.Uint32(e[4:]),
			Size:     binary.LittleEndian.Uint16(e[8:]),
			LoadAt:   binary.LittleEndian.Uint16(e[10:]),
			Bank:     binary.LittleEndian.Uint16(e[12:]),
			Reserved: binary.LittleEndian.Uint16(e[14:]),
		}
		if seen[reg.ID] {
			return &MalformedError{Reason: fmt.Sprintf("duplicate region id %d", reg.ID)}
		}
		seen[reg.ID] = true

		if end := int64(reg.Offset) + int64(reg.Size); end > rom.size {
			return &MalformedError{Reason: fmt.Sprintf("region %d payload [%d:%d] past end of file (%d bytes)", reg.ID, reg.Offset, end, rom.size)}
		}
		rom.regions[i] = reg
	}
	return nil
}

// readAt fills buf from offset off of r. Empty reads always succeed and a
// full read ending exactly at EOF is not an error.
func readAt(r io.ReaderAt, buf []byte, off int64) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// Regions returns the directory entries, in file order.
func (rom *Rom) Regions() []Region {
	return rom.regions
}

// Lookup returns the directory entry of region id.
func (rom *Rom) Lookup(id uint32) (Region, bool) {
	for _, reg := range rom.regions {
		if reg.ID == id {
			return reg, true
		}
	}
	return Region{}, false
}

// Region returns the payload of region id. The returned slice is shared
// between calls and must not be modified.
func (rom *Rom) Region(id uint32) ([]byte, error) {
	if buf, ok := rom.cache[id]; ok {
		return buf, nil
	}

	reg, ok := rom.Lookup(id)
	if !ok {
		return nil, &UnknownRegionError{ID: id}
	}

	buf := make([]byte, reg.Size)
	if err := readAt(rom.r, buf, int64(reg.Offset)); err != nil {
		return nil, fmt.Errorf("reading region %d: %w", id, err)
	}
	rom.cache[id] = buf

	modROM.DebugZ("read region").
		Uint32("id", id).
		Uint32("offset", reg.Offset).
		Uint16("size", reg.Size).
		End()
	return buf, nil
}

// Close releases the underlying file, if the rom was opened with Open.
func (rom *Rom) Close() error {
	clear(rom.cache)
	if rom.closer == nil {
		return nil
	}
	return rom.closer.Close()
}

// PrintInfos writes a human readable description of the rom to w.
func (rom *Rom) PrintInfos(w io.Writer) {
	fmt.Fprintf(w, "version: %d.%d\n", rom.Major, rom.Minor)
	fmt.Fprintf(w, "regions: %d\n", len(rom.regions))
	if len(rom.regions) == 0 {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tOFFSET\tSIZE\tLOAD AT\tBANK\t")
	for _, reg := range rom.regions {
		loadat, bank := "any", "any"
		if reg.LoadAt != 0 {
			loadat = fmt.Sprintf("$%04X", reg.LoadAt)
		}
		if reg.Bank != AnyBank {
			bank = fmt.Sprint(reg.Bank)
		}
		fmt.Fprintf(tw, "%d\t$%08X\t%d\t%s\t%s\t\n", reg.ID, reg.Offset, reg.Size, loadat, bank)
	}
	tw.Flush()
}
