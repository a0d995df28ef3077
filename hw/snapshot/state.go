package snapshot

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-faster/jx"
)

// Version is bumped each time the snapshot layout changes.
const Version = 1

const NumBanks = 4

// Machine is the serializable state of a remi16 machine.
type Machine struct {
	Version int
	CPU     CPU
	Program Program
	Low     []uint8
	Banks   [NumBanks][]uint8
}

type CPU struct {
	Regs   [16]uint16
	Halted bool
}

type Program struct {
	Base uint16
	Code []uint8
}

var ErrVersion = errors.New("unsupported snapshot version")

// Encode writes m as a JSON object to w.
func (m *Machine) Encode(w io.Writer) error {
	var e jx.Encoder
	m.encode(&e)
	_, err := w.Write(e.Bytes())
	return err
}

// MarshalJSON implements json.Marshaler.
func (m *Machine) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	m.encode(&e)
	return e.Bytes(), nil
}

func (m *Machine) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("version")
	e.Int(m.Version)

	e.FieldStart("cpu")
	e.ObjStart()
	e.FieldStart("regs")
	e.ArrStart()
	for _, r := range m.CPU.Regs {
		e.UInt16(r)
	}
	e.ArrEnd()
	e.FieldStart("halted")
	e.Bool(m.CPU.Halted)
	e.ObjEnd()

	e.FieldStart("program")
	e.ObjStart()
	e.FieldStart("base")
	e.UInt16(m.Program.Base)
	e.FieldStart("code")
	e.Base64(m.Program.Code)
	e.ObjEnd()

	e.FieldStart("low")
	e.Base64(m.Low)

	e.FieldStart("banks")
	e.ArrStart()
	for _, b := range m.Banks {
		e.Base64(b)
	}
	e.ArrEnd()
	e.ObjEnd()
}

// Decode reads a snapshot previously written by Encode.
func Decode(r io.Reader) (*Machine, error) {
	m := &Machine{}
	if err := m.decode(jx.Decode(r, 4096)); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if m.Version != Version {
		return nil, fmt.Errorf("snapshot: %w: %d", ErrVersion, m.Version)
	}
	return m, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Machine) UnmarshalJSON(buf []byte) error {
	return m.decode(jx.DecodeBytes(buf))
}

func (m *Machine) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			m.Version, err = d.Int()
		case "cpu":
			err = m.CPU.decode(d)
		case "program":
			err = m.Program.decode(d)
		case "low":
			m.Low, err = d.Base64()
		case "banks":
			i := 0
			err = d.Arr(func(d *jx.Decoder) error {
				if i >= NumBanks {
					return fmt.Errorf("too many banks")
				}
				b, err := d.Base64()
				m.Banks[i] = b
				i++
				return err
			})
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
}

func (c *CPU) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "regs":
			i := 0
			return d.Arr(func(d *jx.Decoder) error {
				if i >= len(c.Regs) {
					return fmt.Errorf("too many registers")
				}
				v, err := decodeWord(d)
				c.Regs[i] = v
				i++
				return err
			})
		case "halted":
			v, err := d.Bool()
			c.Halted = v
			return err
		}
		return d.Skip()
	})
}

func (p *Program) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "base":
			p.Base, err = decodeWord(d)
		case "code":
			p.Code, err = d.Base64()
		default:
			err = d.Skip()
		}
		return err
	})
}

// decodeWord reads a number in [0, 0xFFFF].
func decodeWord(d *jx.Decoder) (uint16, error) {
	v, err := d.Int64()
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 0xFFFF {
		return 0, fmt.Errorf("value %d out of 16-bit range", v)
	}
	return uint16(v), nil
}
