package rom

import (
	"errors"
	"fmt"
)

// ErrMalformed matches every *MalformedError.
var ErrMalformed = errors.New("malformed rom")

type MalformedError struct {
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed rom: %s: %v", e.Reason, e.Err)
	}
	return "malformed rom: " + e.Reason
}

func (e *MalformedError) Is(err error) bool { return err == ErrMalformed }
func (e *MalformedError) Unwrap() error     { return e.Err }

type UnknownRegionError struct {
	ID uint32
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("unknown region %d", e.ID)
}
