package repository

import (
	"context"
	"database/sql"
	"errors"
)

type predictionRepo struct {
	db *sql.DB
}

func (r *predictionRepo) Upsert(ctx context.Context, p *Prediction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO predictions (day, score, level, status, confidence, recommendation_json, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			score = excluded.score,
			level = excluded.level,
			status = excluded.status,
			confidence = excluded.confidence,
			recommendation_json = excluded.recommendation_json,
			computed_at = excluded.computed_at`,
		p.Day, p.Score, p.Level, p.Status, p.Confidence, string(p.Recommendation), p.ComputedAt.UTC(),
	)
	return err
}

func (r *predictionRepo) Get(ctx context.Context, day string) (*Prediction, error) {
	var (
		p   Prediction
		rec string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT day, score, level, status, confidence, recommendation_json, computed_at
		FROM predictions WHERE day = ?`, day,
	).Scan(&p.Day, &p.Score, &p.Level, &p.Status, &p.Confidence, &rec, &p.ComputedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Recommendation = []byte(rec)
	return &p, nil
}

func (r *predictionRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM predictions`)
	return err
}
