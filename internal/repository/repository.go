package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garrettladley/pulse/internal/client/whoop"
	"golang.org/x/oauth2"
)

// ErrNotFound is returned by lookups that have no sensible zero value.
var ErrNotFound = errors.New("repository: not found")

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repository struct {
	db *sql.DB

	Tokens      TokenRepository
	SyncState   SyncStateRepository
	Settings    SettingsRepository
	Cycles      CycleRepository
	Recoveries  RecoveryRepository
	Sleeps      SleepRepository
	Workouts    WorkoutRepository
	Predictions PredictionRepository
}

func New(db *sql.DB) *Repository {
	return &Repository{
		db:          db,
		Tokens:      &tokenRepo{db: db},
		SyncState:   &syncStateRepo{db: db},
		Settings:    &settingsRepo{db: db},
		Cycles:      &cycleRepo{db: db},
		Recoveries:  &recoveryRepo{db: db},
		Sleeps:      &sleepRepo{db: db},
		Workouts:    &workoutRepo{db: db},
		Predictions: &predictionRepo{db: db},
	}
}

// DeleteDerived removes everything computed from source data: persisted
// predictions and workout intents. Source rows are untouched.
func (r *Repository) DeleteDerived(ctx context.Context) error {
	return withTx(ctx, r.db, func(q dbtx) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM predictions`); err != nil {
			return fmt.Errorf("delete predictions: %w", err)
		}
		if _, err := q.ExecContext(ctx, `UPDATE workouts SET intent = NULL`); err != nil {
			return fmt.Errorf("clear intents: %w", err)
		}
		return nil
	})
}

func withTx(ctx context.Context, db *sql.DB, fn func(q dbtx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type CursorParams struct {
	Limit  int
	Cursor *time.Time
}

type CursorResult[T any] struct {
	Records    []T
	NextCursor *time.Time
}

const DefaultPageSize = 50

func (c *CursorParams) limit() int {
	if c != nil && c.Limit > 0 {
		return c.Limit
	}
	return DefaultPageSize
}

// page trims a limit+1 fetch down to limit and derives the next cursor.
func page[T any](records []T, limit int, start func(T) time.Time) *CursorResult[T] {
	result := &CursorResult[T]{Records: records}
	if len(records) > limit {
		result.Records = records[:limit]
		next := start(result.Records[limit-1])
		result.NextCursor = &next
	}
	return result
}

type SyncState struct {
	BackfillComplete  bool
	BackfillWatermark *time.Time
	LastSync          *time.Time
}

type TokenRepository interface {
	// Get returns ErrNotFound when no token has been stored.
	Get(ctx context.Context) (*oauth2.Token, error)
	Upsert(ctx context.Context, token *oauth2.Token) error
	Delete(ctx context.Context) error
}

type SyncStateRepository interface {
	Get(ctx context.Context) (*SyncState, error)
	MarkBackfillComplete(ctx context.Context) error
	UpdateBackfillWatermark(ctx context.Context, watermark time.Time) error
	UpdateLastSync(ctx context.Context, syncTime time.Time) error
	Reset(ctx context.Context) error
}

type SettingsRepository interface {
	GetHistoricalWindow(ctx context.Context) (int, error)
	SetHistoricalWindow(ctx context.Context, years int) error
	// GetValue returns ErrNotFound for an unset key.
	GetValue(ctx context.Context, key string) (string, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error
}

type CycleRepository interface {
	Upsert(ctx context.Context, cycle *whoop.Cycle) error
	UpsertBatch(ctx context.Context, cycles []whoop.Cycle) error
	Get(ctx context.Context, id int64) (*whoop.Cycle, error)
	GetLatest(ctx context.Context, limit int) ([]whoop.Cycle, error)
	GetByDateRange(ctx context.Context, start, end time.Time, cursor *CursorParams) (*CursorResult[whoop.Cycle], error)
	GetPending(ctx context.Context) ([]whoop.Cycle, error)
}

type RecoveryRepository interface {
	Upsert(ctx context.Context, recovery *whoop.Recovery) error
	UpsertBatch(ctx context.Context, recoveries []whoop.Recovery) error
	Get(ctx context.Context, cycleID int64) (*whoop.Recovery, error)
	// GetLatestScored returns up to limit scored recoveries, newest cycle first.
	GetLatestScored(ctx context.Context, limit int) ([]whoop.Recovery, error)
	Delete(ctx context.Context, cycleID int64) error
}

type SleepRepository interface {
	Upsert(ctx context.Context, sleep *whoop.Sleep) error
	UpsertBatch(ctx context.Context, sleeps []whoop.Sleep) error
	Get(ctx context.Context, id string) (*whoop.Sleep, error)
	GetByCycleID(ctx context.Context, cycleID int64) (*whoop.Sleep, error)
	Delete(ctx context.Context, id string) error
}

type WorkoutRepository interface {
	Upsert(ctx context.Context, workout *whoop.Workout) error
	UpsertBatch(ctx context.Context, workouts []whoop.Workout) error
	Get(ctx context.Context, id string) (*whoop.Workout, error)
	GetByDateRange(ctx context.Context, start, end time.Time, cursor *CursorParams) (*CursorResult[whoop.Workout], error)
	GetIntent(ctx context.Context, id string) (string, error)
	SetIntent(ctx context.Context, id string, intent string) error
	CountByIntent(ctx context.Context) (map[string]int, error)
	ClearIntents(ctx context.Context) error
	// DeleteDuplicates removes workouts sharing a start and sport with a more
	// recently updated row, returning how many were removed.
	DeleteDuplicates(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
}

type Prediction struct {
	Day            string
	Score          int
	Level          string
	Status         string
	Confidence     string
	Recommendation []byte
	ComputedAt     time.Time
}

type PredictionRepository interface {
	Upsert(ctx context.Context, p *Prediction) error
	Get(ctx context.Context, day string) (*Prediction, error)
	DeleteAll(ctx context.Context) error
}
