package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"myo_monitor/internal/buffer"
	"myo_monitor/internal/dsp"
	"myo_monitor/internal/logger"
	"myo_monitor/internal/models"
	"myo_monitor/internal/repository"
	"myo_monitor/internal/window"
)

const defaultQueueSize = 64

var ErrPipelineStopped = errors.New("pipeline is not running")

// PipelineOptions configures a PipelineService.
type PipelineOptions struct {
	DataWidth int
	TimeWidth float64
	QueueSize int
	Filter    models.FilterConfig // used until an operator saves one
	Log       *logger.Logger
}

// PipelineService is the consumer side. Batches and operator commands share
// one FIFO channel; Run drains it from a single goroutine, so the sample
// buffer and filter configuration need no locking. Only the published frame
// is shared, behind mu.
type PipelineService struct {
	cmds chan command
	done chan struct{}

	configRepo repository.ConfigRepo
	events     eventRecorder
	gain       *GainService
	log        *logger.Logger

	// consumer-owned
	series       *buffer.Series
	window       *window.Controller
	cfg          models.FilterConfig
	lastCfgError string

	mu    sync.RWMutex
	frame models.Frame
}

// command is one unit of work for the consumer loop.
type command interface {
	exec(ctx context.Context, p *PipelineService)
}

func NewPipelineService(configRepo repository.ConfigRepo, eventRepo repository.EventRepo, gain *GainService, opts PipelineOptions) *PipelineService {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	return &PipelineService{
		cmds:       make(chan command, opts.QueueSize),
		done:       make(chan struct{}),
		configRepo: configRepo,
		events:     eventRecorder{repo: eventRepo, log: opts.Log},
		gain:       gain,
		log:        opts.Log,
		series:     buffer.New(opts.DataWidth),
		window:     window.NewController(opts.TimeWidth),
		cfg:        opts.Filter,
	}
}

// Run restores the saved filter configuration and processes commands in
// arrival order until ctx is cancelled. It must be called once.
func (p *PipelineService) Run(ctx context.Context) error {
	defer close(p.done)
	p.restoreConfig(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-p.cmds:
			c.exec(ctx, p)
		}
	}
}

func (p *PipelineService) restoreConfig(ctx context.Context) {
	if p.configRepo == nil {
		return
	}
	saved, found, err := p.configRepo.Load(ctx)
	switch {
	case err != nil:
		if p.log != nil {
			p.log.Warnw("filter_config_restore_failed", "error", err)
		}
	case found:
		if err := dsp.Validate(saved); err != nil {
			if p.log != nil {
				p.log.Warnw("filter_config_restore_rejected", "error", err)
			}
			return
		}
		p.cfg = saved
		if p.log != nil {
			p.log.Infow("filter_config_restored", "mode", saved.Mode())
		}
	}
}

// send enqueues c behind every batch already queued.
func (p *PipelineService) send(ctx context.Context, c command) error {
	select {
	case <-p.done:
		return ErrPipelineStopped
	default:
	}
	select {
	case p.cmds <- c:
		return nil
	case <-p.done:
		return ErrPipelineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call enqueues c and waits for its reply.
func (p *PipelineService) call(ctx context.Context, c command, reply <-chan error) error {
	if err := p.send(ctx, c); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-p.done:
		return ErrPipelineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit implements acquisition.Sink.
func (p *PipelineService) Submit(ctx context.Context, b models.Batch) error {
	return p.send(ctx, batchCmd{batch: b})
}

// UpdateFilter validates cfg, then hands it to the consumer, which persists it
// and refilters the retained history.
func (p *PipelineService) UpdateFilter(ctx context.Context, cfg models.FilterConfig) error {
	if err := dsp.Validate(cfg); err != nil {
		return err
	}
	reply := make(chan error, 1)
	return p.call(ctx, filterCmd{cfg: cfg, reply: reply}, reply)
}

// FilterConfig returns the configuration the next batch will use.
func (p *PipelineService) FilterConfig(ctx context.Context) (models.FilterConfig, error) {
	reply := make(chan error, 1)
	q := &filterQuery{reply: reply}
	if err := p.call(ctx, q, reply); err != nil {
		return models.FilterConfig{}, err
	}
	return q.cfg, nil
}

// SetGain routes a gain selection through the consumer to the device.
func (p *PipelineService) SetGain(ctx context.Context, g models.Gain) error {
	if !g.Valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidGain, uint8(g))
	}
	reply := make(chan error, 1)
	return p.call(ctx, gainCmd{gain: g, reply: reply}, reply)
}

// ReportChannelError tells the consumer that acquisition ended on a channel failure.
func (p *PipelineService) ReportChannelError(ctx context.Context, err error) error {
	return p.send(ctx, channelErrCmd{err: err})
}

// Frame returns the latest published frame.
func (p *PipelineService) Frame() models.Frame {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frame
}

func (p *PipelineService) publish(f models.Frame) {
	p.mu.Lock()
	p.frame = f
	p.mu.Unlock()
}

// setFrameError keeps the published series and attaches msg to it.
func (p *PipelineService) setFrameError(msg string) {
	p.mu.Lock()
	p.frame.Error = msg
	p.frame.UpdatedAt = time.Now().UTC()
	p.mu.Unlock()
}

// refilter runs the full cycle over the retained history and publishes it.
// On a configuration error the previous frame stays in place.
func (p *PipelineService) refilter(ctx context.Context) {
	raw := dsp.Float64s(p.series.Values())
	out, err := dsp.Apply(p.cfg, raw)
	if err != nil {
		p.configError(ctx, err)
		return
	}
	p.lastCfgError = ""

	latest, ok := p.series.LatestTime()
	appended, evicted := p.series.Counters()
	prev := p.Frame()
	p.publish(models.Frame{
		Seq:       prev.Seq + 1,
		Time:      p.series.Times(),
		Values:    out,
		Window:    p.window.Range(latest, ok),
		Mode:      p.cfg.Mode(),
		Appended:  appended,
		Evicted:   evicted,
		UpdatedAt: time.Now().UTC(),
	})
}

func (p *PipelineService) configError(ctx context.Context, err error) {
	msg := err.Error()
	p.setFrameError(msg)
	if msg == p.lastCfgError {
		return
	}
	p.lastCfgError = msg
	if p.log != nil {
		p.log.Warnw("filter_config_invalid", "error", err)
	}
	p.events.record(ctx, models.EventConfigError, msg, nil)
}

type batchCmd struct {
	batch models.Batch
}

func (c batchCmd) exec(ctx context.Context, p *PipelineService) {
	if n := len(c.batch.Rejected); n > 0 {
		p.events.record(ctx, models.EventDecodeError,
			fmt.Sprintf("skipped %d malformed token(s)", n),
			map[string]any{"tokens": c.batch.Rejected})
	}
	if c.batch.Empty() {
		return
	}
	p.series.Append(c.batch.Values, p.cfg.Step())
	if n := p.series.Evict(); n > 0 && p.log != nil {
		p.log.Debugw("samples_evicted", "count", n, "retained", p.series.Len())
	}
	p.refilter(ctx)
}

type filterCmd struct {
	cfg   models.FilterConfig
	reply chan<- error
}

func (c filterCmd) exec(ctx context.Context, p *PipelineService) {
	prev := p.cfg
	p.cfg = c.cfg
	if p.configRepo != nil {
		if err := p.configRepo.Save(ctx, c.cfg); err != nil && p.log != nil {
			p.log.Errorw("filter_config_save_failed", "error", err)
		}
	}
	p.events.record(ctx, models.EventConfigChange,
		fmt.Sprintf("filter mode %s -> %s", prev.Mode(), c.cfg.Mode()), c.cfg)
	if p.log != nil {
		p.log.Infow("filter_config_changed", "mode", c.cfg.Mode(), "sample_interval_ms", c.cfg.SampleIntervalMs)
	}
	if p.series.Len() > 0 {
		p.refilter(ctx)
	}
	c.reply <- nil
}

type filterQuery struct {
	cfg   models.FilterConfig
	reply chan<- error
}

func (q *filterQuery) exec(_ context.Context, p *PipelineService) {
	q.cfg = p.cfg
	q.reply <- nil
}

type gainCmd struct {
	gain  models.Gain
	reply chan<- error
}

func (c gainCmd) exec(ctx context.Context, p *PipelineService) {
	if p.gain == nil {
		c.reply <- ErrPipelineStopped
		return
	}
	if err := p.gain.SetGain(ctx, c.gain); err != nil {
		if p.log != nil {
			p.log.Errorw("gain_write_failed", "gain", c.gain.String(), "error", err)
		}
		c.reply <- err
		return
	}
	p.events.record(ctx, models.EventGainChange, "gain set to "+c.gain.String(), map[string]int{"gain": int(c.gain)})
	if p.log != nil {
		p.log.Infow("gain_changed", "gain", c.gain.String())
	}
	c.reply <- nil
}

type channelErrCmd struct {
	err error
}

func (c channelErrCmd) exec(ctx context.Context, p *PipelineService) {
	msg := strings.TrimSpace(c.err.Error())
	p.setFrameError(msg)
	p.events.record(ctx, models.EventChannelError, msg, nil)
	if p.log != nil {
		p.log.Errorw("acquisition_channel_failed", "error", c.err)
	}
}
