package service

import (
	"context"
	"time"

	"myo_monitor/internal/models"
	"myo_monitor/internal/window"
)

// FrameSource is anything that publishes pipeline frames.
type FrameSource interface {
	Frame() models.Frame
}

type MonitoringService struct {
	source    FrameSource
	timeWidth float64
}

func NewMonitoringService(source FrameSource, timeWidth float64) *MonitoringService {
	if !(timeWidth > 0) {
		timeWidth = window.DefaultTimeWidth
	}
	return &MonitoringService{source: source, timeWidth: timeWidth}
}

// GetFrame returns the latest frame, or an empty first page before any
// batch has been processed.
func (s *MonitoringService) GetFrame(ctx context.Context) (models.Frame, error) {
	if err := ctx.Err(); err != nil {
		return models.Frame{}, err
	}
	f := s.source.Frame()
	if f.Seq == 0 {
		return s.baselineFrame(f), nil
	}
	return f, nil
}

// baselineFrame keeps any error already attached to the unpublished frame.
func (s *MonitoringService) baselineFrame(f models.Frame) models.Frame {
	updated := f.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	return models.Frame{
		Time:      []float64{},
		Values:    []float64{},
		Window:    window.Window(0, s.timeWidth),
		Mode:      models.ModeNone,
		Error:     f.Error,
		UpdatedAt: updated,
	}
}
