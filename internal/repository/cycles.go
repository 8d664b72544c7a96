package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/garrettladley/pulse/internal/client/whoop"
)

const cycleColumns = `id, user_id, created_at, updated_at, start_at, end_at, timezone_offset, score_state, score_json`

type cycleRepo struct {
	db *sql.DB
}

func (r *cycleRepo) Upsert(ctx context.Context, cycle *whoop.Cycle) error {
	return upsertCycle(ctx, r.db, cycle)
}

func (r *cycleRepo) UpsertBatch(ctx context.Context, cycles []whoop.Cycle) error {
	return withTx(ctx, r.db, func(q dbtx) error {
		for i := range cycles {
			if err := upsertCycle(ctx, q, &cycles[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertCycle(ctx context.Context, q dbtx, cycle *whoop.Cycle) error {
	scoreJSON, err := marshalScore(cycle.Score)
	if err != nil {
		return err
	}

	var end sql.NullTime
	if cycle.End != nil {
		end = sql.NullTime{Time: cycle.End.UTC(), Valid: true}
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO cycles (`+cycleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			timezone_offset = excluded.timezone_offset,
			score_state = excluded.score_state,
			score_json = excluded.score_json`,
		cycle.ID, cycle.UserID, cycle.CreatedAt.UTC(), cycle.UpdatedAt.UTC(),
		cycle.Start.UTC(), end, cycle.TimezoneOffset, string(cycle.ScoreState), scoreJSON,
	)
	return err
}

func (r *cycleRepo) Get(ctx context.Context, id int64) (*whoop.Cycle, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+cycleColumns+` FROM cycles WHERE id = ?`, id)
	cycle, err := scanCycle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return cycle, err
}

func (r *cycleRepo) GetLatest(ctx context.Context, limit int) ([]whoop.Cycle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cycleColumns+` FROM cycles ORDER BY start_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCycle)
}

func (r *cycleRepo) GetByDateRange(ctx context.Context, start, end time.Time, cursor *CursorParams) (*CursorResult[whoop.Cycle], error) {
	limit := cursor.limit()
	upper := end.UTC()
	if cursor != nil && cursor.Cursor != nil {
		upper = cursor.Cursor.UTC()
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+cycleColumns+` FROM cycles
		WHERE start_at >= ? AND start_at < ?
		ORDER BY start_at DESC LIMIT ?`,
		start.UTC(), upper, limit+1,
	)
	if err != nil {
		return nil, err
	}
	cycles, err := collect(rows, scanCycle)
	if err != nil {
		return nil, err
	}
	return page(cycles, limit, func(c whoop.Cycle) time.Time { return c.Start }), nil
}

func (r *cycleRepo) GetPending(ctx context.Context) ([]whoop.Cycle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cycleColumns+` FROM cycles WHERE score_state = ? ORDER BY start_at DESC`,
		string(whoop.ScoreStatePendingScore),
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCycle)
}

func scanCycle(s scanner) (*whoop.Cycle, error) {
	var (
		cycle     whoop.Cycle
		end       sql.NullTime
		state     string
		scoreJSON sql.NullString
	)
	if err := s.Scan(
		&cycle.ID, &cycle.UserID, &cycle.CreatedAt, &cycle.UpdatedAt,
		&cycle.Start, &end, &cycle.TimezoneOffset, &state, &scoreJSON,
	); err != nil {
		return nil, err
	}

	cycle.ScoreState = whoop.ScoreState(state)
	if end.Valid {
		cycle.End = &end.Time
	}

	score, err := unmarshalScore[whoop.CycleScore](scoreJSON)
	if err != nil {
		return nil, err
	}
	cycle.Score = score
	return &cycle, nil
}
