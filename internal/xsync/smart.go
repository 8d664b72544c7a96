package xsync

import (
	"context"
	"fmt"
	"time"

	"github.com/garrettladley/pulse/internal/client/whoop"
	"github.com/garrettladley/pulse/internal/events"
	"github.com/garrettladley/pulse/internal/xslog"
)

const (
	// smartSyncOverlap re-reads the day before the last sync so late scores land.
	smartSyncOverlap = 24 * time.Hour

	initialCycles = 2
)

func (s *Service) PerformSmartSync(ctx context.Context) error {
	if !s.begin("Syncing") {
		return ErrSyncInProgress
	}
	defer s.finish()

	state, err := s.repo.SyncState.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read sync state: %w", err)
	}

	now := s.now()
	if state.LastSync == nil {
		err = s.refreshLatest(ctx)
	} else {
		since := state.LastSync.Add(-smartSyncOverlap)
		s.logger.InfoContext(ctx, "smart sync", xslog.Since(since))
		err = s.fetchSpan(ctx, span{start: &since, end: now}, false)
	}
	if err != nil {
		return err
	}

	s.refreshPending(ctx)

	if err := s.repo.SyncState.UpdateLastSync(ctx, now); err != nil {
		s.logger.WarnContext(ctx, "failed to update last sync time", xslog.Error(err))
	}

	s.classifyAfterSync(ctx)
	s.publish(ctx, events.DataSyncCompleted)
	return nil
}

// refreshLatest seeds an empty store with the most recent cycles.
func (s *Service) refreshLatest(ctx context.Context) error {
	s.setProgress("Fetching latest cycles")

	resp, err := s.client.Cycle.List(ctx, &whoop.ListParams{Limit: initialCycles})
	if err != nil {
		return fmt.Errorf("failed to list cycles: %w", err)
	}
	if len(resp.Records) == 0 {
		s.logger.InfoContext(ctx, "no cycles found")
		return nil
	}

	if err := s.repo.Cycles.UpsertBatch(ctx, resp.Records); err != nil {
		return fmt.Errorf("failed to upsert cycles: %w", err)
	}

	for _, cycle := range resp.Records {
		if err := s.fetchRecovery(ctx, cycle.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to refresh recovery",
				xslog.CycleID(cycle.ID),
				xslog.Error(err))
		}
		if err := s.fetchSleep(ctx, cycle.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to refresh sleep",
				xslog.CycleID(cycle.ID),
				xslog.Error(err))
		}
	}

	s.logger.InfoContext(ctx, "refreshed latest cycles", xslog.Count(len(resp.Records)))
	return nil
}

// refreshPending re-reads cycles that were unscored when last stored.
func (s *Service) refreshPending(ctx context.Context) {
	pending, err := s.repo.Cycles.GetPending(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load pending cycles", xslog.Error(err))
		return
	}
	for _, c := range pending {
		cycle, err := s.client.Cycle.Get(ctx, c.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to refresh pending cycle", xslog.CycleID(c.ID), xslog.Error(err))
			continue
		}
		if err := s.repo.Cycles.Upsert(ctx, cycle); err != nil {
			s.logger.WarnContext(ctx, "failed to store pending cycle", xslog.CycleID(c.ID), xslog.Error(err))
			continue
		}
		if err := s.fetchRecovery(ctx, c.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to refresh recovery", xslog.CycleID(c.ID), xslog.Error(err))
		}
	}
}
