// Package settings is the control surface behind the settings screen and the
// settings commands. It owns the busy flags, the confirmation step in front
// of destructive actions, and the last failure.
package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/garrettladley/pulse/internal/cache"
	"github.com/garrettladley/pulse/internal/events"
)

var (
	ErrInvalidWindow        = errors.New("historical window must be 0 (all-time) or between 5 and 10 years")
	ErrOperationInFlight    = errors.New("another operation is already running")
	ErrSyncInProgress       = errors.New("sync in progress")
	ErrConfirmationResolved = errors.New("confirmation already resolved")
)

const (
	AllTime        = 0
	MinWindowYears = 5
	MaxWindowYears = 10
)

// WindowOptions lists the selectable historical windows in display order.
func WindowOptions() []int {
	opts := []int{AllTime}
	for y := MinWindowYears; y <= MaxWindowYears; y++ {
		opts = append(opts, y)
	}
	return opts
}

func ValidWindow(years int) bool {
	return years == AllTime || (years >= MinWindowYears && years <= MaxWindowYears)
}

func WindowLabel(years int) string {
	if years == AllTime {
		return "all-time"
	}
	return fmt.Sprintf("%d years", years)
}

type Operation string

const (
	OpNone         Operation = ""
	OpAuthorize    Operation = "authorize"
	OpChangeWindow Operation = "change_window"
	OpClearCache   Operation = "clear_cache"
	OpReset        Operation = "reset"
	OpClassify     Operation = "classify"
)

func (o Operation) String() string { return string(o) }

type State struct {
	IsSyncing             bool
	IsResetting           bool
	IsClearingCache       bool
	IsAuthorizing         bool
	IsClassifying         bool
	HistoricalWindowYears int
	SyncProgress          string
	InFlight              Operation
	LastError             *OperationError
}

// Busy reports whether any action is running. Triggers are disabled while
// it is true.
func (s State) Busy() bool {
	return s.IsSyncing || s.IsResetting || s.IsClearingCache || s.IsAuthorizing || s.IsClassifying
}

type OperationError struct {
	Operation Operation
	Err       error
	At        time.Time
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Confirmation gates a destructive action until the user confirms or
// declines it. Each confirmation resolves once.
type Confirmation struct {
	ID      uuid.UUID
	Action  Operation
	Years   int
	Message string
}

type Authorizer interface {
	RequestAuthorization(ctx context.Context) (bool, error)
}

type Syncer interface {
	PerformSmartSync(ctx context.Context) error
	ResetAllData(ctx context.Context) error
	IsSyncing() bool
	Progress() string
}

type Classifier interface {
	AutoClassifyWorkoutIntents(ctx context.Context) (int, error)
}

type WindowStore interface {
	GetHistoricalWindow(ctx context.Context) (int, error)
	SetHistoricalWindow(ctx context.Context, years int) error
}

type Deps struct {
	Authorizer Authorizer
	Syncer     Syncer
	Cache      cache.Invalidator
	Classifier Classifier
	Windows    WindowStore
	Publisher  events.Publisher
}
