package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/garrettladley/pulse/internal/client/whoop"
)

const recoveryColumns = `r.cycle_id, r.sleep_id, r.user_id, r.created_at, r.updated_at, r.score_state, r.score_json`

type recoveryRepo struct {
	db *sql.DB
}

func (r *recoveryRepo) Upsert(ctx context.Context, recovery *whoop.Recovery) error {
	return upsertRecovery(ctx, r.db, recovery)
}

func (r *recoveryRepo) UpsertBatch(ctx context.Context, recoveries []whoop.Recovery) error {
	return withTx(ctx, r.db, func(q dbtx) error {
		for i := range recoveries {
			if err := upsertRecovery(ctx, q, &recoveries[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertRecovery(ctx context.Context, q dbtx, recovery *whoop.Recovery) error {
	scoreJSON, err := marshalScore(recovery.Score)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO recoveries (cycle_id, sleep_id, user_id, created_at, updated_at, score_state, score_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cycle_id) DO UPDATE SET
			sleep_id = excluded.sleep_id,
			updated_at = excluded.updated_at,
			score_state = excluded.score_state,
			score_json = excluded.score_json`,
		recovery.CycleID, recovery.SleepID, recovery.UserID,
		recovery.CreatedAt.UTC(), recovery.UpdatedAt.UTC(),
		string(recovery.ScoreState), scoreJSON,
	)
	return err
}

func (r *recoveryRepo) Get(ctx context.Context, cycleID int64) (*whoop.Recovery, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recoveryColumns+` FROM recoveries r WHERE r.cycle_id = ?`, cycleID)
	recovery, err := scanRecovery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return recovery, err
}

func (r *recoveryRepo) GetLatestScored(ctx context.Context, limit int) ([]whoop.Recovery, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recoveryColumns+` FROM recoveries r
		LEFT JOIN cycles c ON c.id = r.cycle_id
		WHERE r.score_state = ? AND r.score_json IS NOT NULL
		ORDER BY COALESCE(c.start_at, r.created_at) DESC
		LIMIT ?`,
		string(whoop.ScoreStateScored), limit,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRecovery)
}

func (r *recoveryRepo) Delete(ctx context.Context, cycleID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recoveries WHERE cycle_id = ?`, cycleID)
	return err
}

func scanRecovery(s scanner) (*whoop.Recovery, error) {
	var (
		recovery  whoop.Recovery
		state     string
		scoreJSON sql.NullString
	)
	if err := s.Scan(
		&recovery.CycleID, &recovery.SleepID, &recovery.UserID,
		&recovery.CreatedAt, &recovery.UpdatedAt, &state, &scoreJSON,
	); err != nil {
		return nil, err
	}
	recovery.ScoreState = whoop.ScoreState(state)

	score, err := unmarshalScore[whoop.RecoveryScore](scoreJSON)
	if err != nil {
		return nil, err
	}
	recovery.Score = score
	return &recovery, nil
}
