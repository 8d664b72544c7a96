package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/garrettladley/pulse/internal/client/whoop"
)

const sleepColumns = `id, cycle_id, user_id, created_at, updated_at, start_at, end_at, timezone_offset, nap, score_state, score_json`

type sleepRepo struct {
	db *sql.DB
}

func (r *sleepRepo) Upsert(ctx context.Context, sleep *whoop.Sleep) error {
	return upsertSleep(ctx, r.db, sleep)
}

func (r *sleepRepo) UpsertBatch(ctx context.Context, sleeps []whoop.Sleep) error {
	return withTx(ctx, r.db, func(q dbtx) error {
		for i := range sleeps {
			if err := upsertSleep(ctx, q, &sleeps[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertSleep(ctx context.Context, q dbtx, sleep *whoop.Sleep) error {
	scoreJSON, err := marshalScore(sleep.Score)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO sleeps (`+sleepColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			cycle_id = excluded.cycle_id,
			updated_at = excluded.updated_at,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			timezone_offset = excluded.timezone_offset,
			nap = excluded.nap,
			score_state = excluded.score_state,
			score_json = excluded.score_json`,
		sleep.ID, sleep.CycleID, sleep.UserID, sleep.CreatedAt.UTC(), sleep.UpdatedAt.UTC(),
		sleep.Start.UTC(), sleep.End.UTC(), sleep.TimezoneOffset, sleep.Nap,
		string(sleep.ScoreState), scoreJSON,
	)
	return err
}

func (r *sleepRepo) Get(ctx context.Context, id string) (*whoop.Sleep, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sleepColumns+` FROM sleeps WHERE id = ?`, id)
	sleep, err := scanSleep(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sleep, err
}

// GetByCycleID returns the main (non-nap) sleep for a cycle.
func (r *sleepRepo) GetByCycleID(ctx context.Context, cycleID int64) (*whoop.Sleep, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sleepColumns+` FROM sleeps
		WHERE cycle_id = ? AND nap = 0
		ORDER BY start_at DESC LIMIT 1`, cycleID)
	sleep, err := scanSleep(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sleep, err
}

func (r *sleepRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sleeps WHERE id = ?`, id)
	return err
}

func scanSleep(s scanner) (*whoop.Sleep, error) {
	var (
		sleep     whoop.Sleep
		state     string
		scoreJSON sql.NullString
	)
	if err := s.Scan(
		&sleep.ID, &sleep.CycleID, &sleep.UserID, &sleep.CreatedAt, &sleep.UpdatedAt,
		&sleep.Start, &sleep.End, &sleep.TimezoneOffset, &sleep.Nap, &state, &scoreJSON,
	); err != nil {
		return nil, err
	}
	sleep.ScoreState = whoop.ScoreState(state)

	score, err := unmarshalScore[whoop.SleepScore](scoreJSON)
	if err != nil {
		return nil, err
	}
	sleep.Score = score
	return &sleep, nil
}
