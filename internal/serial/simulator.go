package serial

import (
	"io"
	"math"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"
)

// SimulatorConfig shapes the synthetic EMG-like signal.
type SimulatorConfig struct {
	SampleInterval time.Duration // time between generated samples
	ReadTimeout    time.Duration // how long an idle Read waits before returning (0, io.EOF)
	Amplitude      float64       // burst amplitude at gain x1, in ADC counts
	HumHz          float64       // mains interference frequency
	Seed           uint64
}

const (
	simBaseline   = 512
	simMaxReading = 1023
	simBurstEvery = 2 * time.Second
	simBurstLen   = 600 * time.Millisecond
	simMaxPending = 64 << 10
)

// Simulator behaves like the sensor on the other end of a serial line:
// Read returns CRLF-terminated ASCII readings generated at SampleInterval,
// Write accepts raw gain bytes that scale the generated amplitude.
type Simulator struct {
	cfg SimulatorConfig
	now func() time.Time

	mu      sync.Mutex
	rng     *rand.Rand
	start   time.Time
	emitted int64
	pending []byte
	gain    byte
	written []byte
	done    chan struct{}
	closed  bool
}

// NewSimulator returns a simulator whose clock starts now.
func NewSimulator(cfg SimulatorConfig) *Simulator {
	return newSimulator(cfg, time.Now)
}

func newSimulator(cfg SimulatorConfig, now func() time.Time) *Simulator {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = time.Millisecond
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Amplitude <= 0 {
		cfg.Amplitude = 40
	}
	if cfg.HumHz <= 0 {
		cfg.HumHz = 50
	}
	return &Simulator{
		cfg:   cfg,
		now:   now,
		rng:   rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		start: now(),
		gain:  1,
		done:  make(chan struct{}),
	}
}

// Read returns every reading due since the previous call. When nothing is
// due it waits up to ReadTimeout and then reports (0, io.EOF) like an idle tty.
func (s *Simulator) Read(p []byte) (int, error) {
	deadline := time.NewTimer(s.cfg.ReadTimeout)
	defer deadline.Stop()

	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return 0, io.ErrClosedPipe
		}
		s.generate()
		if len(s.pending) > 0 {
			n := copy(p, s.pending)
			s.pending = s.pending[n:]
			s.mu.Unlock()
			return n, nil
		}
		wait := s.untilNext()
		s.mu.Unlock()

		tick := time.NewTimer(wait)
		select {
		case <-s.done:
			tick.Stop()
			return 0, io.ErrClosedPipe
		case <-deadline.C:
			tick.Stop()
			return 0, io.EOF
		case <-tick.C:
		}
	}
}

// Write records gain bytes; the last byte written becomes the active gain.
func (s *Simulator) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	s.written = append(s.written, p...)
	if len(p) > 0 {
		s.gain = p[len(p)-1]
	}
	return len(p), nil
}

// Close unblocks pending reads. Further calls are no-ops.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}

// Gain returns the multiplier currently applied.
func (s *Simulator) Gain() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain
}

// Written returns a copy of every byte the host has sent.
func (s *Simulator) Written() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.written...)
}

// generate appends readings for every sample slot that has elapsed.
// Caller holds mu.
func (s *Simulator) generate() {
	due := int64(s.now().Sub(s.start) / s.cfg.SampleInterval)
	for s.emitted < due && len(s.pending) < simMaxPending {
		s.emitted++
		t := time.Duration(s.emitted) * s.cfg.SampleInterval
		s.pending = strconv.AppendInt(s.pending, int64(s.reading(t)), 10)
		s.pending = append(s.pending, '\r', '\n')
	}
	if s.emitted < due {
		// Reader fell behind; drop the backlog like a full UART FIFO.
		s.emitted = due
	}
}

// untilNext returns the time until the next sample slot. Caller holds mu.
func (s *Simulator) untilNext() time.Duration {
	next := s.start.Add(time.Duration(s.emitted+1) * s.cfg.SampleInterval)
	if d := next.Sub(s.now()); d > 0 {
		return d
	}
	return time.Millisecond
}

// reading synthesises one ADC value at offset t: periodic muscle bursts of
// band-limited noise plus mains hum, scaled by gain and clamped to 10 bits.
func (s *Simulator) reading(t time.Duration) int {
	sec := t.Seconds()
	amp := s.cfg.Amplitude * float64(s.gain)

	var burst float64
	if t%simBurstEvery < simBurstLen {
		phase := float64(t%simBurstEvery) / float64(simBurstLen)
		burst = math.Sin(math.Pi*phase) * (s.rng.Float64()*2 - 1)
	}
	hum := 0.25 * math.Sin(2*math.Pi*s.cfg.HumHz*sec)

	v := simBaseline + amp*(burst+hum)
	return int(math.Max(0, math.Min(simMaxReading, math.Round(v))))
}
