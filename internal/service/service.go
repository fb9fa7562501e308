package service

import (
	"context"
	"io"
	"time"

	"myo_monitor/internal/acquisition"
	"myo_monitor/internal/logger"
	"myo_monitor/internal/models"
	"myo_monitor/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Acquisition starts and stops the background serial reader.
type Acquisition interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Status() models.AcquisitionStatus
}

// Pipeline accepts operator commands. Every command is delivered on the same
// ordered channel as sample batches.
type Pipeline interface {
	UpdateFilter(ctx context.Context, cfg models.FilterConfig) error
	FilterConfig(ctx context.Context) (models.FilterConfig, error)
	SetGain(ctx context.Context, g models.Gain) error
}

// Monitoring exposes the latest published frame.
type Monitoring interface {
	GetFrame(ctx context.Context) (models.Frame, error)
}

// EventLog exposes the append-only pipeline log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.PipelineEvent, error)
}

// Runner is the consumer loop; it returns when ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

type Service struct {
	Acquisition
	Pipeline
	Monitoring
	EventLog
	Authorization
	Runner
}

// Device is the sensor connection: read by acquisition, written by gain.
type Device interface {
	io.Reader
	io.ByteWriter
	Name() string
}

// Options carries the tunables NewService needs.
type Options struct {
	DataWidth   int
	TimeWidth   float64
	QueueSize   int
	Filter      models.FilterConfig
	Yield       time.Duration
	ReadSize    int
	StopTimeout time.Duration
	Auth        AuthOptions
	Log         *logger.Logger
}

// NewService wires the repositories and the device into the services.
func NewService(repos *repository.Repository, dev Device, opts Options) *Service {
	gain := NewGainService(dev)
	pipeline := NewPipelineService(repos.ConfigRepo, repos.EventRepo, gain, PipelineOptions{
		DataWidth: opts.DataWidth,
		TimeWidth: opts.TimeWidth,
		QueueSize: opts.QueueSize,
		Filter:    opts.Filter,
		Log:       opts.Log,
	})
	loop := acquisition.NewLoop(dev,
		acquisition.WithYield(opts.Yield),
		acquisition.WithReadSize(opts.ReadSize),
		acquisition.WithLogger(opts.Log),
	)
	acq := NewAcquisitionService(loop, pipeline, repos.EventRepo, dev.Name(), opts.StopTimeout, opts.Log)

	return &Service{
		Acquisition:   acq,
		Pipeline:      pipeline,
		Monitoring:    NewMonitoringService(pipeline, opts.TimeWidth),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, opts.Auth),
		Runner:        pipeline,
	}
}
