package serial

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by any operation on a closed channel.
	ErrClosed = errors.New("serial: channel closed")
	// ErrShortWrite reports a write that did not transfer every byte.
	ErrShortWrite = errors.New("serial: short write")
)

// ChannelError is an open, read or write failure on the sensor port.
// Acquisition treats it as fatal; there is no reconnect.
type ChannelError struct {
	Op   string // "open", "read", "write", "close"
	Port string
	Err  error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("serial %s %s: %v", e.Op, e.Port, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}
