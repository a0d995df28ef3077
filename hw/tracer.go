package hw

import (
	"io"
)

type tracer struct {
	w   io.Writer
	buf []byte
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

func appendHex16(buf []byte, v uint16) []byte {
	var tmp [4]byte
	hexEncode(tmp[0:], byte(v>>8))
	hexEncode(tmp[2:], byte(v))
	return append(buf, tmp[:]...)
}

// write the execution trace line of the instruction about to be executed:
// address, raw bytes, disassembly and register values.
func (t *tracer) write(addr uint16, in Instr, cpu *CPU) {
	const disasmCol = 20
	const regsCol = 46

	buf := appendHex16(t.buf[:0], addr)
	buf = append(buf, "  "...)
	for _, b := range in.Bytes() {
		var tmp [2]byte
		hexEncode(tmp[:], b)
		buf = append(buf, tmp[:]...)
		buf = append(buf, ' ')
	}
	for len(buf) < disasmCol {
		buf = append(buf, ' ')
	}

	buf = append(buf, Disasm(in, false).String()...)
	for len(buf) < regsCol {
		buf = append(buf, ' ')
	}

	for i, v := range cpu.Regs {
		if i != 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, regNames[i]...)
		buf = append(buf, ':')
		buf = appendHex16(buf, v)
	}
	buf = append(buf, '\n')

	t.buf = buf
	t.w.Write(buf)
}
