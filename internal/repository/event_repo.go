package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"myo_monitor/internal/models"
)

// eventTimeLayout is fixed-width so stored timestamps sort lexically.
const eventTimeLayout = "2006-01-02T15:04:05.000000000Z"

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

// Append stores e, assigning an ID and timestamp when missing.
func (r *EventSQLite) Append(ctx context.Context, e models.PipelineEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	var meta sql.NullString
	if e.Metadata != nil {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal event metadata: %w", err)
		}
		meta = sql.NullString{String: string(b), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pipeline_events (id, occurred_at, type, message, meta) VALUES (?, ?, ?, ?, ?)`,
		e.EventID,
		e.OccurredAt.UTC().Format(eventTimeLayout),
		normalizeType(e.Type),
		e.Description,
		meta,
	)
	if err != nil {
		return fmt.Errorf("append %s event: %w", e.Type, err)
	}
	return nil
}

// List returns events in [from, to] (zero bounds are open) of type typ
// (empty matches all), oldest first.
func (r *EventSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.PipelineEvent, error) {
	var (
		where []string
		args  []any
	)
	if !from.IsZero() {
		where = append(where, "occurred_at >= ?")
		args = append(args, from.UTC().Format(eventTimeLayout))
	}
	if !to.IsZero() {
		where = append(where, "occurred_at <= ?")
		args = append(args, to.UTC().Format(eventTimeLayout))
	}
	if t := normalizeType(typ); t != "" {
		where = append(where, "type = ?")
		args = append(args, t)
	}

	q := `SELECT id, occurred_at, type, message, meta FROM pipeline_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []models.PipelineEvent
	for rows.Next() {
		var (
			ev      models.PipelineEvent
			stamp   string
			metaStr sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &stamp, &ev.Type, &ev.Description, &metaStr); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if ev.OccurredAt, err = time.Parse(eventTimeLayout, stamp); err != nil {
			return nil, fmt.Errorf("parse event time %q: %w", stamp, err)
		}
		if metaStr.Valid && metaStr.String != "" {
			var v any
			if json.Unmarshal([]byte(metaStr.String), &v) == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

func normalizeType(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
