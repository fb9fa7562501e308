// Package serial owns the connection to the sensor: the physical port, the
// guarded channel shared by the reader and the gain writer, and a simulated
// device for running without hardware.
package serial

import (
	"time"

	"github.com/jacobsa/go-serial/serial"
)

const (
	// DefaultBaudRate is the rate the sensor firmware is fixed to.
	DefaultBaudRate = 115200
	// SimulatorPort selects the built-in simulator instead of a device.
	SimulatorPort = "sim"
	// DefaultReadTimeout bounds a single read so stop requests are observed.
	DefaultReadTimeout = 100 * time.Millisecond
)

// Config describes the physical port.
type Config struct {
	Port        string
	BaudRate    uint
	ReadTimeout time.Duration
}

// Open opens the configured port as 8N1 with an inter-character read timeout,
// so an idle line returns from Read instead of blocking forever.
func Open(cfg Config) (*Channel, error) {
	opts := openOptions(cfg)
	port, err := serial.Open(opts)
	if err != nil {
		return nil, &ChannelError{Op: "open", Port: cfg.Port, Err: err}
	}
	return NewChannel(cfg.Port, port), nil
}

func openOptions(cfg Config) serial.OpenOptions {
	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	return serial.OpenOptions{
		PortName:              cfg.Port,
		BaudRate:              baud,
		DataBits:              8,
		StopBits:              1,
		ParityMode:            serial.PARITY_NONE,
		MinimumReadSize:       0,
		InterCharacterTimeout: timeoutMillis(cfg.ReadTimeout),
	}
}

// timeoutMillis rounds d to the 100 ms resolution termios supports,
// with a floor of one tick.
func timeoutMillis(d time.Duration) uint {
	if d <= 0 {
		d = DefaultReadTimeout
	}
	ms := uint(d / time.Millisecond)
	ms = (ms + 50) / 100 * 100
	if ms < 100 {
		ms = 100
	}
	return ms
}
