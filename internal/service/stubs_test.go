package service

import (
	"context"
	"sync"
	"time"

	"myo_monitor/internal/models"
)

// eventRepoStub records appended events and serves List from a fixture.
type eventRepoStub struct {
	mu       sync.Mutex
	appended []models.PipelineEvent
	appendFn func(models.PipelineEvent) error

	listResp []models.PipelineEvent
	listErr  error
	gotFrom  time.Time
	gotTo    time.Time
	gotType  string
	calls    int
}

func (r *eventRepoStub) Append(_ context.Context, e models.PipelineEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appended = append(r.appended, e)
	if r.appendFn != nil {
		return r.appendFn(e)
	}
	return nil
}

func (r *eventRepoStub) List(_ context.Context, from, to time.Time, typ string) ([]models.PipelineEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.gotFrom, r.gotTo, r.gotType = from, to, typ
	return r.listResp, r.listErr
}

func (r *eventRepoStub) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.appended))
	for i, e := range r.appended {
		out[i] = e.Type
	}
	return out
}

func (r *eventRepoStub) count(typ string) int {
	n := 0
	for _, t := range r.types() {
		if t == typ {
			n++
		}
	}
	return n
}

// configRepoStub is an in-memory repository.ConfigRepo.
type configRepoStub struct {
	mu      sync.Mutex
	stored  models.FilterConfig
	found   bool
	loadErr error
	saves   []models.FilterConfig
}

func (r *configRepoStub) Save(_ context.Context, cfg models.FilterConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, cfg)
	r.stored, r.found = cfg, true
	return nil
}

func (r *configRepoStub) Load(context.Context) (models.FilterConfig, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stored, r.found, r.loadErr
}

// byteSink records every byte written, like the device end of the line.
type byteSink struct {
	mu    sync.Mutex
	bytes []byte
	err   error
}

func (b *byteSink) WriteByte(c byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.bytes = append(b.bytes, c)
	return nil
}

func (b *byteSink) written() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.bytes...)
}

func defaultFilter() models.FilterConfig {
	return models.FilterConfig{
		PassLow: 30, PassHigh: 100,
		StopLow: 40, StopHigh: 60,
		SampleIntervalMs: 1,
	}
}
