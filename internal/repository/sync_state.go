package repository

import (
	"context"
	"database/sql"
	"time"
)

const (
	keyBackfillComplete  = "backfill_complete"
	keyBackfillWatermark = "backfill_watermark"
	keyLastSync          = "last_sync"
)

type syncStateRepo struct {
	db *sql.DB
}

func (r *syncStateRepo) Get(ctx context.Context) (*SyncState, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM sync_state`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var state SyncState
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		switch key {
		case keyBackfillComplete:
			state.BackfillComplete = value == "1"
		case keyBackfillWatermark:
			state.BackfillWatermark, err = parseTime(value)
		case keyLastSync:
			state.LastSync, err = parseTime(value)
		}
		if err != nil {
			return nil, err
		}
	}
	return &state, rows.Err()
}

func (r *syncStateRepo) MarkBackfillComplete(ctx context.Context) error {
	return r.set(ctx, keyBackfillComplete, "1")
}

func (r *syncStateRepo) UpdateBackfillWatermark(ctx context.Context, watermark time.Time) error {
	return r.set(ctx, keyBackfillWatermark, formatTime(watermark))
}

func (r *syncStateRepo) UpdateLastSync(ctx context.Context, syncTime time.Time) error {
	return r.set(ctx, keyLastSync, formatTime(syncTime))
}

func (r *syncStateRepo) Reset(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_state`)
	return err
}

func (r *syncStateRepo) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (*time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
