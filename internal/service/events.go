package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"myo_monitor/internal/logger"
	"myo_monitor/internal/models"
	"myo_monitor/internal/repository"
)

// eventRecorder appends to the event log. A failed append is logged and
// otherwise ignored; the log never stalls the pipeline.
type eventRecorder struct {
	repo repository.EventRepo
	log  *logger.Logger
}

func (r eventRecorder) record(ctx context.Context, typ, desc string, meta any) {
	if r.repo == nil {
		return
	}
	err := r.repo.Append(ctx, models.PipelineEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
	if err != nil && r.log != nil {
		r.log.Errorw("event_append_failed", "type", typ, "error", err)
	}
}
