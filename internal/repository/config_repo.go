package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"myo_monitor/internal/models"
)

type ConfigSQLite struct {
	db *sql.DB
}

func NewConfigSQLite(db *sql.DB) *ConfigSQLite {
	return &ConfigSQLite{db: db}
}

const (
	filterConfigRowID = 1

	upsertFilterConfigSQL = `
		INSERT INTO filter_config (id, bandpass, bandstop, pass_low, pass_high, stop_low, stop_high, sample_interval_ms, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			bandpass=excluded.bandpass,
			bandstop=excluded.bandstop,
			pass_low=excluded.pass_low,
			pass_high=excluded.pass_high,
			stop_low=excluded.stop_low,
			stop_high=excluded.stop_high,
			sample_interval_ms=excluded.sample_interval_ms,
			updated_at=excluded.updated_at
	`

	selectFilterConfigSQL = `
		SELECT bandpass, bandstop, pass_low, pass_high, stop_low, stop_high, sample_interval_ms
		FROM filter_config WHERE id=?
	`
)

// Save upserts the single filter_config row.
func (r *ConfigSQLite) Save(ctx context.Context, cfg models.FilterConfig) error {
	_, err := r.db.ExecContext(ctx, upsertFilterConfigSQL,
		filterConfigRowID,
		cfg.Bandpass,
		cfg.Bandstop,
		cfg.PassLow,
		cfg.PassHigh,
		cfg.StopLow,
		cfg.StopHigh,
		cfg.SampleIntervalMs,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save filter config: %w", err)
	}
	return nil
}

// Load returns the stored configuration; found is false when none was saved.
func (r *ConfigSQLite) Load(ctx context.Context) (models.FilterConfig, bool, error) {
	var cfg models.FilterConfig
	err := r.db.QueryRowContext(ctx, selectFilterConfigSQL, filterConfigRowID).Scan(
		&cfg.Bandpass,
		&cfg.Bandstop,
		&cfg.PassLow,
		&cfg.PassHigh,
		&cfg.StopLow,
		&cfg.StopHigh,
		&cfg.SampleIntervalMs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.FilterConfig{}, false, nil
		}
		return models.FilterConfig{}, false, fmt.Errorf("load filter config: %w", err)
	}
	return cfg, true, nil
}
