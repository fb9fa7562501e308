package repository

import (
	"context"
	"database/sql"
	"time"

	"myo_monitor/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// ConfigRepo persists the last filter configuration an operator applied.
// Sample history is never stored.
type ConfigRepo interface {
	Save(ctx context.Context, cfg models.FilterConfig) error
	Load(ctx context.Context) (cfg models.FilterConfig, found bool, err error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.PipelineEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.PipelineEvent, error)
}

type Repository struct {
	ConfigRepo ConfigRepo
	EventRepo  EventRepo
	Auth       Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ConfigRepo: NewConfigSQLite(db),
		EventRepo:  NewEventSQLite(db),
		Auth:       NewUserRepository(db),
	}
}
