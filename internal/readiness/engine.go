package readiness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	go_json "github.com/goccy/go-json"

	"github.com/garrettladley/pulse/internal/cache"
	"github.com/garrettladley/pulse/internal/client/whoop"
	"github.com/garrettladley/pulse/internal/events"
	"github.com/garrettladley/pulse/internal/repository"
	"github.com/garrettladley/pulse/internal/xslog"
)

// ErrNoData means no scored recovery exists yet.
var ErrNoData = errors.New("readiness: no scored recovery")

const (
	baselineDays     = 7
	strainWindowDays = 3

	highStrainLoad    = 16.0
	poorSleepPercent  = 70.0
	dayKeyLayout      = time.DateOnly
	goHardHRVTolerate = 1.0
)

// Evaluation is what the engine caches and persists for one day.
type Evaluation struct {
	Day            string              `json:"day"`
	Snapshot       Snapshot            `json:"snapshot"`
	Recommendation DailyRecommendation `json:"recommendation"`
}

type Engine struct {
	repo   *repository.Repository
	cache  cache.Cache[Evaluation]
	logger *slog.Logger
	now    func() time.Time
}

func NewEngine(repo *repository.Repository, c cache.Cache[Evaluation], logger *slog.Logger) *Engine {
	return &Engine{
		repo:   repo,
		cache:  c,
		logger: logger,
		now:    time.Now,
	}
}

func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// Evaluate returns the readiness evaluation for day, reading through the
// cache. A fresh result is persisted as that day's prediction.
func (e *Engine) Evaluate(ctx context.Context, day time.Time) (*Evaluation, error) {
	key := DayKey(day)

	if cached, ok, err := e.cache.Get(ctx, key); err != nil {
		e.logger.WarnContext(ctx, "prediction cache read failed", xslog.Error(err), xslog.Day(key))
	} else if ok {
		return &cached, nil
	}

	in, err := e.gather(ctx)
	if err != nil {
		return nil, err
	}

	eval := evaluate(in, e.now())
	eval.Day = key

	if err := e.persist(ctx, &eval); err != nil {
		return nil, err
	}
	if err := e.cache.Set(ctx, key, eval); err != nil {
		e.logger.WarnContext(ctx, "prediction cache write failed", xslog.Error(err), xslog.Day(key))
	}

	e.logger.InfoContext(ctx, "evaluated readiness",
		xslog.Day(key),
		xslog.Score(eval.Snapshot.Score),
		xslog.Status(string(eval.Recommendation.Status)),
	)
	return &eval, nil
}

// Watch drops cached evaluations whenever the store changes underneath them.
// It blocks until ctx is done.
func (e *Engine) Watch(ctx context.Context, sub events.Subscriber) {
	ch, unsubscribe := sub.Subscribe(events.DataSyncCompleted, events.DataWindowChanged)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := e.cache.Invalidate(ctx); err != nil {
				e.logger.WarnContext(ctx, "prediction cache invalidation failed",
					xslog.Topic(ev.Topic.String()), xslog.Error(err))
				continue
			}
			e.logger.DebugContext(ctx, "prediction cache invalidated", xslog.Topic(ev.Topic.String()))
		}
	}
}

type inputs struct {
	latest       whoop.RecoveryScore
	baselineHRV  []float64
	strain       []float64
	sleepPercent *float64
}

func (e *Engine) gather(ctx context.Context) (inputs, error) {
	var in inputs

	recs, err := e.repo.Recoveries.GetLatestScored(ctx, baselineDays+1)
	if err != nil {
		return in, fmt.Errorf("failed to load recoveries: %w", err)
	}
	if len(recs) == 0 {
		return in, ErrNoData
	}
	in.latest = *recs[0].Score
	for _, r := range recs[1:] {
		in.baselineHRV = append(in.baselineHRV, r.Score.HRVRmssdMilli)
	}

	cycles, err := e.repo.Cycles.GetLatest(ctx, strainWindowDays+1)
	if err != nil {
		return in, fmt.Errorf("failed to load cycles: %w", err)
	}
	for _, c := range cycles {
		// the open cycle is still accumulating strain
		if c.End == nil {
			continue
		}
		if s, ok := c.Strain(); ok && len(in.strain) < strainWindowDays {
			in.strain = append(in.strain, s)
		}
	}

	sleep, err := e.repo.Sleeps.GetByCycleID(ctx, recs[0].CycleID)
	if err != nil {
		return in, fmt.Errorf("failed to load sleep: %w", err)
	}
	if sleep != nil && sleep.Score != nil {
		p := sleep.Score.SleepPerformancePercentage
		in.sleepPercent = &p
	}

	return in, nil
}

func (e *Engine) persist(ctx context.Context, eval *Evaluation) error {
	data, err := go_json.Marshal(eval.Recommendation)
	if err != nil {
		return fmt.Errorf("failed to encode recommendation: %w", err)
	}
	err = e.repo.Predictions.Upsert(ctx, &repository.Prediction{
		Day:            eval.Day,
		Score:          eval.Snapshot.Score,
		Level:          string(eval.Snapshot.Level),
		Status:         string(eval.Recommendation.Status),
		Confidence:     string(eval.Recommendation.Confidence),
		Recommendation: data,
		ComputedAt:     eval.Snapshot.EvaluatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to persist prediction: %w", err)
	}
	return nil
}

func evaluate(in inputs, now time.Time) Evaluation {
	score := clampScore(int(math.Round(in.latest.RecoveryScore)))
	baseline, hasBaseline := mean(in.baselineHRV)
	strainLoad, hasStrain := mean(in.strain)

	status := statusForScore(score, in.latest.HRVRmssdMilli, baseline, hasBaseline)
	if hasStrain && strainLoad >= highStrainLoad {
		status = ease(status)
	}
	if in.sleepPercent != nil && *in.sleepPercent < poorSleepPercent {
		status = ease(status)
	}

	rec := recommendationFor(status)
	rec.Confidence = confidenceFor(len(in.baselineHRV), in.latest.UserCalibrating)
	rec.Reasoning = reasoning(score, in, baseline, hasBaseline, strainLoad, hasStrain)

	return Evaluation{
		Snapshot: Snapshot{
			Score:          score,
			Level:          LevelForScore(score),
			Recommendation: rec.Headline,
			EvaluatedAt:    now,
		},
		Recommendation: rec,
	}
}

func statusForScore(score int, hrv, baseline float64, hasBaseline bool) Status {
	switch {
	case score >= 80 && (!hasBaseline || hrv >= baseline-goHardHRVTolerate):
		return StatusGoHard
	case score >= 67:
		return StatusQuality
	case score >= 50:
		return StatusModerate
	case score >= 34:
		return StatusEasy
	default:
		return StatusRest
	}
}

// ease steps one status toward rest.
func ease(s Status) Status {
	for i, st := range Statuses {
		if st == s && i+1 < len(Statuses) {
			return Statuses[i+1]
		}
	}
	return StatusRest
}

func confidenceFor(baselineSamples int, calibrating bool) Confidence {
	switch {
	case calibrating || baselineSamples < 3:
		return ConfidenceLow
	case baselineSamples < baselineDays:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}

func recommendationFor(s Status) DailyRecommendation {
	switch s {
	case StatusGoHard:
		return DailyRecommendation{
			Status:      s,
			Headline:    "Primed for a hard session",
			Guidance:    "Recovery and HRV support high intensity. Intervals or a race-pace effort fit today.",
			TargetZones: []string{"Zone 4", "Zone 5"},
		}
	case StatusQuality:
		return DailyRecommendation{
			Status:      s,
			Headline:    "Good day for quality work",
			Guidance:    "Train with purpose at threshold or tempo and keep the top end controlled.",
			TargetZones: []string{"Zone 3", "Zone 4"},
			AvoidZones:  []string{"Zone 5"},
		}
	case StatusModerate:
		return DailyRecommendation{
			Status:      s,
			Headline:    "Keep it steady",
			Guidance:    "Aerobic volume is fine. Skip hard efforts until recovery improves.",
			TargetZones: []string{"Zone 2", "Zone 3"},
			AvoidZones:  []string{"Zone 4", "Zone 5"},
		}
	case StatusEasy:
		return DailyRecommendation{
			Status:      s,
			Headline:    "Go easy today",
			Guidance:    "Light movement only. Prioritize sleep and fueling.",
			TargetZones: []string{"Zone 1", "Zone 2"},
			AvoidZones:  []string{"Zone 3", "Zone 4", "Zone 5"},
		}
	case StatusRest:
		return DailyRecommendation{
			Status:      s,
			Headline:    "Rest and recover",
			Guidance:    "Your body needs a break. Walk, stretch, and get to bed early.",
			TargetZones: []string{"Zone 1"},
			AvoidZones:  []string{"Zone 2", "Zone 3", "Zone 4", "Zone 5"},
		}
	}
	panic(fmt.Sprintf("readiness: unknown status %q", string(s)))
}

func reasoning(score int, in inputs, baseline float64, hasBaseline bool, strain float64, hasStrain bool) string {
	parts := []string{fmt.Sprintf("Recovery %d%%", score)}
	if hasBaseline {
		parts = append(parts, fmt.Sprintf("HRV %.0f ms vs %.0f ms %d-day baseline", in.latest.HRVRmssdMilli, baseline, len(in.baselineHRV)))
	} else {
		parts = append(parts, fmt.Sprintf("HRV %.0f ms, no baseline yet", in.latest.HRVRmssdMilli))
	}
	if hasStrain {
		parts = append(parts, fmt.Sprintf("%d-day strain avg %.1f", len(in.strain), strain))
	}
	if in.sleepPercent != nil {
		parts = append(parts, fmt.Sprintf("sleep performance %.0f%%", *in.sleepPercent))
	}
	return strings.Join(parts, "; ") + "."
}

func mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs)), true
}
