package acquisition

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"myo_monitor/internal/logger"
	"myo_monitor/internal/models"
)

const (
	// DefaultYield is the pause after each emitted batch.
	DefaultYield = 50 * time.Millisecond
	// DefaultReadSize is the largest chunk taken from the channel at once.
	DefaultReadSize = 4096
	// DefaultIdleBackoff is the pause after a read that returned no bytes.
	DefaultIdleBackoff = 10 * time.Millisecond
)

// Sink receives decoded batches in order. Submit blocks until the batch is
// queued or ctx ends.
type Sink interface {
	Submit(ctx context.Context, b models.Batch) error
}

// Stats counts what the loop has seen since it was created.
type Stats struct {
	Chunks   uint64
	Samples  uint64
	Rejected uint64
}

// Loop is the background reader. Run is called from a single goroutine;
// Stats may be read from any goroutine.
type Loop struct {
	src      io.Reader
	log      *logger.Logger
	yield    time.Duration
	idle     time.Duration
	readSize int

	chunks   atomic.Uint64
	samples  atomic.Uint64
	rejected atomic.Uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithYield sets the pause after each emitted batch.
func WithYield(d time.Duration) Option {
	return func(l *Loop) { l.yield = d }
}

// WithIdleBackoff sets the pause after an empty read. Sources that already
// block for a read timeout can use a small value; it is never zero.
func WithIdleBackoff(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.idle = d
		}
	}
}

// WithReadSize sets the read buffer size.
func WithReadSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.readSize = n
		}
	}
}

// WithLogger attaches a logger; a nil logger disables logging.
func WithLogger(log *logger.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// NewLoop builds a loop reading from src, normally a *serial.Channel whose
// reads return (0, nil) when the line is idle.
func NewLoop(src io.Reader, opts ...Option) *Loop {
	l := &Loop{src: src, yield: DefaultYield, idle: DefaultIdleBackoff, readSize: DefaultReadSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run reads until ctx is cancelled or the source fails. Each non-empty read
// is decoded into one batch and handed to sink. Cancellation returns nil; a
// read error is returned as is and ends the loop, there is no reconnect.
func (l *Loop) Run(ctx context.Context, sink Sink) error {
	buf := make([]byte, l.readSize)
	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := l.src.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if n == 0 {
			if !pause(ctx, l.idle) {
				return nil
			}
			continue
		}
		l.chunks.Add(1)

		values, decodeErrs := Decode(buf[:n])
		batch := models.Batch{Values: values, ReceivedAt: time.Now()}
		for _, de := range decodeErrs {
			batch.Rejected = append(batch.Rejected, de.Token)
			if l.log != nil {
				l.log.Warnw("token_skipped", "token", de.Token, "error", de.Err)
			}
		}
		l.samples.Add(uint64(len(values)))
		l.rejected.Add(uint64(len(decodeErrs)))

		if batch.Empty() && len(batch.Rejected) == 0 {
			continue
		}
		if err := sink.Submit(ctx, batch); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		if l.yield > 0 && !pause(ctx, l.yield) {
			return nil
		}
	}
}

// pause sleeps for d and reports false if ctx ended first.
func pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Stats returns the running counters.
func (l *Loop) Stats() Stats {
	return Stats{
		Chunks:   l.chunks.Load(),
		Samples:  l.samples.Load(),
		Rejected: l.rejected.Load(),
	}
}
