package memory

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by AccessError.
var (
	ErrOutOfRange   = errors.New("address out of range")
	ErrNull         = errors.New("null pointer access")
	ErrStale        = errors.New("address is not live")
	ErrTypeMismatch = errors.New("type mismatch")
	ErrExhausted    = errors.New("out of memory")
	ErrInvalidFree  = errors.New("invalid free")
)

// AccessError describes a failed memory operation.
type AccessError struct {
	Addr int    // offending address
	Op   string // "read", "write", "alloc", "free", "copy"
	Err  error  // one of the sentinel errors above
}

// Error implements the error interface.
func (e *AccessError) Error() string {
	return fmt.Sprintf("%s at address 0x%04x: %v", e.Op, e.Addr, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

func accessErr(op string, addr int, err error) error {
	return &AccessError{Addr: addr, Op: op, Err: err}
}
