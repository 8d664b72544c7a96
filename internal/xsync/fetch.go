package xsync

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garrettladley/pulse/internal/client/whoop"
	"github.com/garrettladley/pulse/internal/xslog"
)

const maxRecoveryConcurrency = 2

// span bounds a fetch. A nil start means all-time.
type span struct {
	start *time.Time
	end   time.Time
}

func (sp span) params() whoop.ListParams {
	end := sp.end
	return whoop.ListParams{
		Start: sp.start,
		End:   &end,
		Limit: whoop.MaxPageSize,
	}
}

// fetchAll pages through list, handing each page to store.
func fetchAll[T any](ctx context.Context, list whoop.ListFunc[T], params whoop.ListParams, store func(context.Context, []T) error) (int, error) {
	var total int
	err := whoop.Each(ctx, list, params, func(page []T) error {
		if err := store(ctx, page); err != nil {
			return err
		}
		total += len(page)
		return nil
	})
	return total, err
}

// fetchSpan pulls cycles, sleeps and workouts for sp concurrently.
// withRecoveries fetches each cycle's recovery individually; otherwise the
// recovery collection endpoint is paged over the same span.
func (s *Service) fetchSpan(ctx context.Context, sp span, withRecoveries bool) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := fetchAll(gctx, s.client.Cycle.List, sp.params(), func(ctx context.Context, cycles []whoop.Cycle) error {
			if err := s.repo.Cycles.UpsertBatch(ctx, cycles); err != nil {
				return fmt.Errorf("failed to upsert cycles batch: %w", err)
			}
			if withRecoveries {
				s.fetchRecoveries(ctx, cycles)
			}
			if len(cycles) > 0 {
				oldest := cycles[len(cycles)-1].Start
				if err := s.repo.SyncState.UpdateBackfillWatermark(ctx, oldest); err != nil {
					s.logger.WarnContext(ctx, "failed to update backfill watermark", xslog.Error(err))
				}
				s.setProgress("Fetched cycles back to %s", oldest.Format(time.DateOnly))
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to fetch cycles: %w", err)
		}
		s.logger.InfoContext(gctx, "fetched cycles", xslog.Count(n))
		return nil
	})

	if !withRecoveries {
		g.Go(func() error {
			n, err := fetchAll(gctx, s.client.Recovery.List, sp.params(), s.repo.Recoveries.UpsertBatch)
			if err != nil {
				return fmt.Errorf("failed to fetch recoveries: %w", err)
			}
			s.logger.InfoContext(gctx, "fetched recoveries", xslog.Count(n))
			return nil
		})
	}

	g.Go(func() error {
		n, err := fetchAll(gctx, s.client.Sleep.List, sp.params(), s.repo.Sleeps.UpsertBatch)
		if err != nil {
			return fmt.Errorf("failed to fetch sleeps: %w", err)
		}
		s.logger.InfoContext(gctx, "fetched sleeps", xslog.Count(n))
		return nil
	})

	g.Go(func() error {
		n, err := fetchAll(gctx, s.client.Workout.List, sp.params(), s.repo.Workouts.UpsertBatch)
		if err != nil {
			return fmt.Errorf("failed to fetch workouts: %w", err)
		}
		s.logger.InfoContext(gctx, "fetched workouts", xslog.Count(n))
		return nil
	})

	return g.Wait()
}

// fetchRecoveries is best effort: a cycle without a recovery yet is normal.
// An expired grant or an exhausted quota stops the remaining fetches.
func (s *Service) fetchRecoveries(ctx context.Context, cycles []whoop.Cycle) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxRecoveryConcurrency)
	for _, cycle := range cycles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := s.fetchRecovery(gctx, cycle.ID)
			switch {
			case err == nil:
			case whoop.IsUnauthorized(err), whoop.IsRateLimited(err):
				return err
			default:
				s.logger.WarnContext(gctx, "failed to fetch recovery",
					xslog.CycleID(cycle.ID),
					xslog.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "recovery fetch stopped early", xslog.Error(err))
	}
}

func (s *Service) fetchRecovery(ctx context.Context, cycleID int64) error {
	recovery, err := s.client.Cycle.GetRecovery(ctx, cycleID)
	if whoop.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get recovery: %w", err)
	}
	if err := s.repo.Recoveries.Upsert(ctx, recovery); err != nil {
		return fmt.Errorf("failed to upsert recovery: %w", err)
	}
	return nil
}

func (s *Service) fetchSleep(ctx context.Context, cycleID int64) error {
	sleep, err := s.client.Cycle.GetSleep(ctx, cycleID)
	if whoop.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get sleep: %w", err)
	}
	return s.repo.Sleeps.Upsert(ctx, sleep)
}
