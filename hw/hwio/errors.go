package hwio

import (
	"errors"
	"fmt"
)

// ErrBusFault matches every *BusFault with errors.Is.
var ErrBusFault = errors.New("bus fault")

// BusFault reports an access no device could serve, or a 16-bit access
// straddling the end of a device range.
type BusFault struct {
	Addr   uint16
	Device string // empty when no device claims Addr
	Reason string
}

func (e *BusFault) Error() string {
	if e.Device == "" {
		return fmt.Sprintf("bus fault at $%04X: %s", e.Addr, e.Reason)
	}
	return fmt.Sprintf("bus fault at $%04X (%s): %s", e.Addr, e.Device, e.Reason)
}

func (e *BusFault) Is(err error) bool {
	return err == ErrBusFault
}
