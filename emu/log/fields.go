package log

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"gopkg.in/Sirupsen/logrus.v0"
)

type FieldType int

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeBool
	FieldTypeString
	FieldTypeHex8
	FieldTypeHex16
	FieldTypeHex32
	FieldTypeInt
	FieldTypeUint
	FieldTypeError
	FieldTypeStringer
	FieldTypeBlob
)

type ZField struct {
	Type FieldType
	Key  string

	// Possible values. Only one of these is populated, depending on Type
	String    string
	Integer   uint64
	Error     error
	Interface any
	Boolean   bool
	Blob      []byte
}

func (f *ZField) Value() string {
	switch f.Type {
	case FieldTypeBool:
		if f.Boolean {
			return "true"
		}
		return "false"
	case FieldTypeString:
		return f.String
	case FieldTypeUint:
		return strconv.FormatUint(f.Integer, 10)
	case FieldTypeInt:
		return strconv.FormatInt(int64(f.Integer), 10)
	case FieldTypeHex8:
		return fmt.Sprintf("%02x", uint(f.Integer))
	case FieldTypeHex16:
		return fmt.Sprintf("%04x", uint(f.Integer))
	case FieldTypeHex32:
		return fmt.Sprintf("%08x", uint(f.Integer))
	case FieldTypeError:
		if f.Error == nil {
			return "<nil>"
		}
		return f.Error.Error()
	case FieldTypeStringer:
		return f.Interface.(fmt.Stringer).String()
	case FieldTypeBlob:
		return hex.Dump(f.Blob)
	}
	return ""
}

const maxZFields = 16

// EntryZ is a log entry built field by field. A nil *EntryZ is valid and
// does nothing, that's what disabled modules/levels return.
type EntryZ struct {
	mod   Module
	lvl   Level
	msg   string
	zfbuf [maxZFields]ZField
	zfidx int
}

func (z *EntryZ) add(f ZField) *EntryZ {
	if z == nil || z.zfidx == maxZFields {
		return z
	}
	z.zfbuf[z.zfidx] = f
	z.zfidx++
	return z
}

func (z *EntryZ) String(key, val string) *EntryZ {
	return z.add(ZField{Type: FieldTypeString, Key: key, String: val})
}

func (z *EntryZ) Bool(key string, val bool) *EntryZ {
	return z.add(ZField{Type: FieldTypeBool, Key: key, Boolean: val})
}

func (z *EntryZ) Hex8(key string, val uint8) *EntryZ {
	return z.add(ZField{Type: FieldTypeHex8, Key: key, Integer: uint64(val)})
}

func (z *EntryZ) Hex16(key string, val uint16) *EntryZ {
	return z.add(ZField{Type: FieldTypeHex16, Key: key, Integer: uint64(val)})
}

func (z *EntryZ) Hex32(key string, val uint32) *EntryZ {
	return z.add(ZField{Type: FieldTypeHex32, Key: key, Integer: uint64(val)})
}

func (z *EntryZ) Int(key string, val int) *EntryZ {
	return z.add(ZField{Type: FieldTypeInt, Key: key, Integer: uint64(val)})
}

func (z *EntryZ) Uint8(key string, val uint8) *EntryZ {
	return z.add(ZField{Type: FieldTypeUint, Key: key, Integer: uint64(val)})
}

func (z *EntryZ) Uint16(key string, val uint16) *EntryZ {
	return z.add(ZField{Type: FieldTypeUint, Key: key, Integer: uint64(val)})
}

func (z *EntryZ) Uint32(key string, val uint32) *EntryZ {
	return z.add(ZField{Type: FieldTypeUint, Key: key, Integer: uint64(val)})
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	return z.add(ZField{Type: FieldTypeError, Key: key, Error: err})
}

func (z *EntryZ) Stringer(key string, s fmt.Stringer) *EntryZ {
	return z.add(ZField{Type: FieldTypeStringer, Key: key, Interface: s})
}

func (z *EntryZ) Blob(key string, buf []byte) *EntryZ {
	return z.add(ZField{Type: FieldTypeBlob, Key: key, Blob: buf})
}

// End emits the entry.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	for _, c := range contexts {
		c.AddLogContext(z)
	}

	fields := make(logrus.Fields, z.zfidx+1)
	fields["_mod"] = z.mod.String()
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}

	entry := logrus.StandardLogger().WithFields(fields)
	switch z.lvl {
	case DebugLevel:
		entry.Debug(z.msg)
	case InfoLevel:
		entry.Info(z.msg)
	case WarnLevel:
		entry.Warn(z.msg)
	case ErrorLevel:
		entry.Error(z.msg)
	case FatalLevel:
		entry.Fatal(z.msg)
	default:
		entry.Panic(z.msg)
	}
}
