package hw

// Word is a 16-bit value made of a low and a high byte. The decomposition is
// arithmetic so it doesn't depend on the host byte order.
type Word uint16

// MakeWord builds a word from its 2 bytes.
func MakeWord(lo, hi uint8) Word {
	return Word(uint16(lo) | uint16(hi)<<8)
}

// WordFromInt16 returns the two's complement bit pattern of v.
func WordFromInt16(v int16) Word {
	return Word(uint16(v))
}

func (w Word) Lo() uint8 { return uint8(w & 0xFF) }
func (w Word) Hi() uint8 { return uint8((w >> 8) & 0xFF) }

// Int16 reinterprets the word as a two's complement signed value.
func (w Word) Int16() int16 { return int16(w) }
