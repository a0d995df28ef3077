package rom

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Builder assembles a ROM file. Payload offsets are computed when writing.
type Builder struct {
	Header

	regions []Region
	data    [][]byte
}

func NewBuilder(major, minor uint8) *Builder {
	return &Builder{Header: Header{Major: major, Minor: minor}}
}

// AddRegion appends a region to the ROM. loadat 0 and bank AnyBank leave the
// region unconstrained.
func (b *Builder) AddRegion(id uint32, loadat, bank uint16, data []byte) error {
	if len(data) > math.MaxUint16 {
		return fmt.Errorf("region %d: size %d exceeds %d bytes", id, len(data), math.MaxUint16)
	}
	for _, reg := range b.regions {
		if reg.ID == id {
			return fmt.Errorf("region %d: duplicate id", id)
		}
	}
	if len(b.regions) == math.MaxUint16 {
		return fmt.Errorf("region %d: too many regions", id)
	}

	b.regions = append(b.regions, Region{
		ID:     id,
		Size:   uint16(len(data)),
		LoadAt: loadat,
		Bank:   bank,
	})
	b.data = append(b.data, data)
	return nil
}

// WriteTo implements io.WriterTo.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	off := uint32(headerSize + entrySize*len(b.regions))

	buf := make([]byte, 0, off)
	buf = append(buf, Magic...)
	buf = append(buf, b.Major, b.Minor)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(b.regions)))
	for _, reg := range b.regions {
		reg.Offset = off
		off += uint32(reg.Size)

		buf = binary.LittleEndian.AppendUint32(buf, reg.ID)
		buf = binary.LittleEndian.AppendUint32(buf, reg.Offset)
		buf = binary.LittleEndian.AppendUint16(buf, reg.Size)
		buf = binary.LittleEndian.AppendUint16(buf, reg.LoadAt)
		buf = binary.LittleEndian.AppendUint16(buf, reg.Bank)
		buf = binary.LittleEndian.AppendUint16(buf, reg.Reserved)
	}
	for _, data := range b.data {
		buf = append(buf, data...)
	}

	n, err := w.Write(buf)
	return int64(n), err
}
