package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"myo_monitor/internal/acquisition"
	"myo_monitor/internal/logger"
	"myo_monitor/internal/models"
	"myo_monitor/internal/repository"
)

const defaultStopTimeout = 2 * time.Second

var (
	ErrAcquisitionRunning = errors.New("acquisition is already running")
	ErrStopTimeout        = errors.New("acquisition did not stop in time")
)

// BatchSink is the consumer side of acquisition.
type BatchSink interface {
	acquisition.Sink
	ReportChannelError(ctx context.Context, err error) error
}

// reader is the part of acquisition.Loop the service drives.
type reader interface {
	Run(ctx context.Context, sink acquisition.Sink) error
	Stats() acquisition.Stats
}

// AcquisitionService owns the reader goroutine. Stop waits for the goroutine
// to exit before returning, so the channel can be closed safely afterwards.
type AcquisitionService struct {
	loop        reader
	sink        BatchSink
	events      eventRecorder
	port        string
	stopTimeout time.Duration
	log         *logger.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	exited    chan struct{}
	startedAt time.Time

	// errMu is separate so the exiting reader never contends with Stop.
	errMu   sync.Mutex
	lastErr error
}

func NewAcquisitionService(loop reader, sink BatchSink, eventRepo repository.EventRepo, port string, stopTimeout time.Duration, log *logger.Logger) *AcquisitionService {
	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}
	return &AcquisitionService{
		loop:        loop,
		sink:        sink,
		events:      eventRecorder{repo: eventRepo, log: log},
		port:        port,
		stopTimeout: stopTimeout,
		log:         log,
	}
}

// Start launches the reader. Batches go to the same buffer as before a Stop,
// so Start after Stop resumes the history.
func (s *AcquisitionService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running() {
		return ErrAcquisitionRunning
	}

	if s.cancel != nil {
		s.cancel()
	}
	runCtx, cancel := context.WithCancel(context.Background())
	exited := make(chan struct{})
	s.cancel = cancel
	s.exited = exited
	s.startedAt = time.Now().UTC()
	s.setLastErr(nil)

	go s.run(runCtx, exited)

	s.events.record(ctx, models.EventStart, "acquisition started on "+s.port, nil)
	if s.log != nil {
		s.log.Infow("acquisition_started", "port", s.port)
	}
	return nil
}

func (s *AcquisitionService) run(ctx context.Context, exited chan struct{}) {
	defer close(exited)

	err := s.loop.Run(ctx, s.sink)
	if err == nil || errors.Is(err, ErrPipelineStopped) {
		return
	}

	s.setLastErr(err)

	reportCtx, cancel := context.WithTimeout(context.Background(), s.stopTimeout)
	defer cancel()
	if rerr := s.sink.ReportChannelError(reportCtx, err); rerr != nil && s.log != nil {
		s.log.Errorw("channel_error_report_failed", "error", rerr, "cause", err)
	}
}

// Stop signals the reader and waits, bounded by the stop timeout, for it to
// exit. Stopping an idle service is a no-op.
func (s *AcquisitionService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return nil
	}
	s.cancel()

	timer := time.NewTimer(s.stopTimeout)
	defer timer.Stop()
	select {
	case <-s.exited:
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrStopTimeout, s.stopTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	s.cancel = nil
	s.events.record(ctx, models.EventStop, "acquisition stopped", nil)
	if s.log != nil {
		s.log.Infow("acquisition_stopped", "port", s.port)
	}
	return nil
}

// Status reports the reader state and counters.
func (s *AcquisitionService) Status() models.AcquisitionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.loop.Stats()
	out := models.AcquisitionStatus{
		Running:   s.running(),
		Port:      s.port,
		Chunks:    st.Chunks,
		Samples:   st.Samples,
		Rejected:  st.Rejected,
		StartedAt: s.startedAt,
	}
	if err := s.getLastErr(); err != nil {
		out.LastError = err.Error()
	}
	return out
}

func (s *AcquisitionService) setLastErr(err error) {
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}

func (s *AcquisitionService) getLastErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErr
}

// running reports whether the reader goroutine is alive. Caller holds mu.
func (s *AcquisitionService) running() bool {
	if s.exited == nil {
		return false
	}
	select {
	case <-s.exited:
		return false
	default:
		return true
	}
}
