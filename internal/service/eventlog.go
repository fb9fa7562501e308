package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"myo_monitor/internal/models"
	"myo_monitor/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must be <= to")
	ErrUnknownEventType = errors.New("unknown event type")
)

var eventTypes = map[string]struct{}{
	models.EventStart:        {},
	models.EventStop:         {},
	models.EventGainChange:   {},
	models.EventConfigChange: {},
	models.EventDecodeError:  {},
	models.EventConfigError:  {},
	models.EventChannelError: {},
}

func utcOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// List returns events matching f, oldest first.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.PipelineEvent, error) {
	from, to := utcOrZero(f.From), utcOrZero(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, ErrInvalidTimeRange
	}
	typ := strings.ToUpper(strings.TrimSpace(f.Type))
	if _, ok := eventTypes[typ]; typ != "" && !ok {
		return nil, ErrUnknownEventType
	}
	return s.eventRepo.List(ctx, from, to, typ)
}
