package xsync

import (
	"context"
	"fmt"
	"time"

	"github.com/garrettladley/pulse/internal/classify"
	"github.com/garrettladley/pulse/internal/repository"
	"github.com/garrettladley/pulse/internal/xslog"
)

var endOfTime = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

func (s *Service) AutoClassifyWorkoutIntents(ctx context.Context) (int, error) {
	var (
		labelled int
		cursor   = &repository.CursorParams{Limit: repository.DefaultPageSize}
	)
	for {
		if err := ctx.Err(); err != nil {
			return labelled, err
		}

		page, err := s.repo.Workouts.GetByDateRange(ctx, time.Time{}, endOfTime, cursor)
		if err != nil {
			return labelled, fmt.Errorf("failed to list workouts: %w", err)
		}

		for _, w := range page.Records {
			intent := classify.Classify(w)
			if err := s.repo.Workouts.SetIntent(ctx, w.ID, intent.String()); err != nil {
				return labelled, fmt.Errorf("failed to store intent for %s: %w", w.ID, err)
			}
			s.logger.DebugContext(ctx, "classified workout",
				xslog.WorkoutID(w.ID),
				xslog.Intent(intent.String()))
			labelled++
		}

		if page.NextCursor == nil {
			break
		}
		cursor.Cursor = page.NextCursor
	}

	s.logger.InfoContext(ctx, "classified workouts", xslog.Count(labelled))
	return labelled, nil
}

func (s *Service) classifyAfterSync(ctx context.Context) {
	if _, err := s.AutoClassifyWorkoutIntents(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to classify workouts", xslog.Error(err))
	}
}
