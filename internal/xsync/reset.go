package xsync

import (
	"context"
	"fmt"

	"github.com/garrettladley/pulse/internal/events"
	"github.com/garrettladley/pulse/internal/xslog"
)

func (s *Service) ResetAllData(ctx context.Context) error {
	if !s.begin("Resetting") {
		return ErrSyncInProgress
	}
	defer s.finish()

	s.setProgress("Removing derived data")
	if err := s.repo.DeleteDerived(ctx); err != nil {
		return fmt.Errorf("failed to delete derived data: %w", err)
	}
	if err := s.repo.SyncState.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset sync state: %w", err)
	}

	years, err := s.repo.Settings.GetHistoricalWindow(ctx)
	if err != nil {
		return fmt.Errorf("failed to read historical window: %w", err)
	}

	now := s.now()
	sp := span{end: now}
	if years > 0 {
		start := now.AddDate(-years, 0, 0)
		sp.start = &start
	}

	s.logger.InfoContext(ctx, "starting backfill", xslog.Years(years), xslog.End(now))
	s.setProgress("Backfilling %s", windowLabel(years))
	if err := s.fetchSpan(ctx, sp, true); err != nil {
		s.logger.ErrorContext(ctx, "backfill failed", xslog.Error(err))
		return err
	}

	if err := s.repo.SyncState.MarkBackfillComplete(ctx); err != nil {
		return fmt.Errorf("failed to mark backfill complete: %w", err)
	}
	if err := s.repo.SyncState.UpdateLastSync(ctx, now); err != nil {
		s.logger.WarnContext(ctx, "failed to update last sync time", xslog.Error(err))
	}

	removed, err := s.repo.Workouts.DeleteDuplicates(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete duplicate workouts: %w", err)
	}
	s.logger.InfoContext(ctx, "removed duplicate workouts", xslog.Count(int(removed)))
	s.logger.InfoContext(ctx, "backfill complete")
	s.classifyAfterSync(ctx)
	s.publish(ctx, events.DataSyncCompleted)
	return nil
}

func windowLabel(years int) string {
	if years == 0 {
		return "all history"
	}
	return fmt.Sprintf("%d years", years)
}
