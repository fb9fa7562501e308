package serial

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

// Channel is the sensor connection shared by the acquisition reader and the
// gain writer. Writes are serialised by a mutex; reads are not, so a pending
// read never delays a gain byte. Close is idempotent.
type Channel struct {
	name   string
	port   io.ReadWriteCloser
	wmu    sync.Mutex
	closed atomic.Bool
}

// NewChannel wraps an already open port.
func NewChannel(name string, port io.ReadWriteCloser) *Channel {
	return &Channel{name: name, port: port}
}

// Name returns the port name the channel was opened with.
func (c *Channel) Name() string {
	return c.name
}

// Read reads whatever bytes are currently available. An idle line yields
// (0, nil) once the port's read timeout expires.
func (c *Channel) Read(p []byte) (int, error) {
	if c.closed.Load() {
		return 0, &ChannelError{Op: "read", Port: c.name, Err: ErrClosed}
	}
	n, err := c.port.Read(p)
	if errors.Is(err, io.EOF) {
		// termios VMIN=0 reports a timed-out read as EOF.
		return n, nil
	}
	if err != nil {
		if c.closed.Load() {
			err = ErrClosed
		}
		return n, &ChannelError{Op: "read", Port: c.name, Err: err}
	}
	return n, nil
}

// Write sends p in full or returns a ChannelError.
func (c *Channel) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	if c.closed.Load() {
		return 0, &ChannelError{Op: "write", Port: c.name, Err: ErrClosed}
	}
	n, err := c.port.Write(p)
	if err != nil {
		return n, &ChannelError{Op: "write", Port: c.name, Err: err}
	}
	if n != len(p) {
		return n, &ChannelError{Op: "write", Port: c.name, Err: ErrShortWrite}
	}
	return n, nil
}

// WriteByte sends exactly one byte.
func (c *Channel) WriteByte(b byte) error {
	_, err := c.Write([]byte{b})
	return err
}

// Close closes the underlying port once. Callers should stop the reader
// before closing so no read is in flight.
func (c *Channel) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.port.Close(); err != nil {
		return &ChannelError{Op: "close", Port: c.name, Err: err}
	}
	return nil
}
