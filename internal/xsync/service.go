package xsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/garrettladley/pulse/internal/client/whoop"
	"github.com/garrettladley/pulse/internal/events"
	"github.com/garrettladley/pulse/internal/repository"
	"github.com/garrettladley/pulse/internal/xslog"
)

// ErrSyncInProgress is returned when a sync or reset is already running.
var ErrSyncInProgress = errors.New("sync already in progress")

type SyncService interface {
	// PerformSmartSync fetches what changed since the last sync, or the two
	// most recent cycles when the store has never synced.
	PerformSmartSync(ctx context.Context) error

	// ResetAllData drops derived and duplicate records, then backfills the
	// configured historical window from the API.
	ResetAllData(ctx context.Context) error

	// AutoClassifyWorkoutIntents labels every stored workout and returns how
	// many were labelled.
	AutoClassifyWorkoutIntents(ctx context.Context) (int, error)

	IsSyncing() bool
	Progress() string
}

type Service struct {
	client    *whoop.Client
	repo      *repository.Repository
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time

	syncing    atomic.Bool
	progressMu sync.RWMutex
	progress   string
}

var _ SyncService = (*Service)(nil)

func NewService(client *whoop.Client, repo *repository.Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		client:    client,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) IsSyncing() bool {
	return s.syncing.Load()
}

func (s *Service) Progress() string {
	s.progressMu.RLock()
	defer s.progressMu.RUnlock()
	return s.progress
}

func (s *Service) setProgress(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	s.progressMu.Lock()
	s.progress = msg
	s.progressMu.Unlock()
}

// begin claims the single sync slot.
func (s *Service) begin(phase string) bool {
	if !s.syncing.CompareAndSwap(false, true) {
		return false
	}
	s.setProgress("%s", phase)
	s.logger.Debug("sync slot claimed", xslog.Phase(phase))
	return true
}

func (s *Service) finish() {
	s.setProgress("")
	s.syncing.Store(false)
}

func (s *Service) publish(ctx context.Context, topic events.Topic) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.New(topic)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event",
			xslog.Topic(topic.String()),
			xslog.Error(err))
	}
}

func (s *Service) IsBackfillComplete(ctx context.Context) (bool, error) {
	state, err := s.repo.SyncState.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read sync state: %w", err)
	}
	return state.BackfillComplete, nil
}
