package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/garrettladley/pulse/internal/client/whoop"
)

const workoutColumns = `id, user_id, created_at, updated_at, start_at, end_at, timezone_offset, sport_name, score_state, score_json`

type workoutRepo struct {
	db *sql.DB
}

func (r *workoutRepo) Upsert(ctx context.Context, workout *whoop.Workout) error {
	return upsertWorkout(ctx, r.db, workout)
}

func (r *workoutRepo) UpsertBatch(ctx context.Context, workouts []whoop.Workout) error {
	return withTx(ctx, r.db, func(q dbtx) error {
		for i := range workouts {
			if err := upsertWorkout(ctx, q, &workouts[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// upsertWorkout leaves any classified intent in place.
func upsertWorkout(ctx context.Context, q dbtx, workout *whoop.Workout) error {
	scoreJSON, err := marshalScore(workout.Score)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO workouts (`+workoutColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			timezone_offset = excluded.timezone_offset,
			sport_name = excluded.sport_name,
			score_state = excluded.score_state,
			score_json = excluded.score_json`,
		workout.ID, workout.UserID, workout.CreatedAt.UTC(), workout.UpdatedAt.UTC(),
		workout.Start.UTC(), workout.End.UTC(), workout.TimezoneOffset, workout.SportName,
		string(workout.ScoreState), scoreJSON,
	)
	return err
}

func (r *workoutRepo) Get(ctx context.Context, id string) (*whoop.Workout, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id)
	workout, err := scanWorkout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return workout, err
}

func (r *workoutRepo) GetByDateRange(ctx context.Context, start, end time.Time, cursor *CursorParams) (*CursorResult[whoop.Workout], error) {
	limit := cursor.limit()
	upper := end.UTC()
	if cursor != nil && cursor.Cursor != nil {
		upper = cursor.Cursor.UTC()
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+workoutColumns+` FROM workouts
		WHERE start_at >= ? AND start_at < ?
		ORDER BY start_at DESC LIMIT ?`,
		start.UTC(), upper, limit+1,
	)
	if err != nil {
		return nil, err
	}
	workouts, err := collect(rows, scanWorkout)
	if err != nil {
		return nil, err
	}
	return page(workouts, limit, func(w whoop.Workout) time.Time { return w.Start }), nil
}

// GetIntent returns "" for an unclassified workout and ErrNotFound for an
// unknown id.
func (r *workoutRepo) GetIntent(ctx context.Context, id string) (string, error) {
	var intent sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT intent FROM workouts WHERE id = ?`, id).Scan(&intent)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return intent.String, err
}

func (r *workoutRepo) SetIntent(ctx context.Context, id string, intent string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE workouts SET intent = ? WHERE id = ?`, nullString(intent), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workoutRepo) CountByIntent(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT intent, COUNT(*) FROM workouts WHERE intent IS NOT NULL GROUP BY intent`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			intent string
			n      int
		)
		if err := rows.Scan(&intent, &n); err != nil {
			return nil, err
		}
		counts[intent] = n
	}
	return counts, rows.Err()
}

func (r *workoutRepo) ClearIntents(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE workouts SET intent = NULL`)
	return err
}

func (r *workoutRepo) DeleteDuplicates(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM workouts WHERE id IN (
			SELECT w.id FROM workouts w
			JOIN workouts o
				ON o.start_at = w.start_at
				AND o.sport_name = w.sport_name
				AND o.id <> w.id
			WHERE o.updated_at > w.updated_at
				OR (o.updated_at = w.updated_at AND o.id > w.id)
		)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *workoutRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id)
	return err
}

func scanWorkout(s scanner) (*whoop.Workout, error) {
	var (
		workout   whoop.Workout
		state     string
		scoreJSON sql.NullString
	)
	if err := s.Scan(
		&workout.ID, &workout.UserID, &workout.CreatedAt, &workout.UpdatedAt,
		&workout.Start, &workout.End, &workout.TimezoneOffset, &workout.SportName,
		&state, &scoreJSON,
	); err != nil {
		return nil, err
	}
	workout.ScoreState = whoop.ScoreState(state)

	score, err := unmarshalScore[whoop.WorkoutScore](scoreJSON)
	if err != nil {
		return nil, err
	}
	workout.Score = score
	return &workout, nil
}
