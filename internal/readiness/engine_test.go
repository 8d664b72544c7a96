package readiness

import (
	"context"
	"errors"
	"testing"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/garrettladley/pulse/internal/cache"
	"github.com/garrettladley/pulse/internal/client/whoop"
	"github.com/garrettladley/pulse/internal/db"
	"github.com/garrettladley/pulse/internal/events"
	"github.com/garrettladley/pulse/internal/repository"
	"github.com/garrettladley/pulse/internal/xslog"
)

var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func TestEvaluateStatus(t *testing.T) {
	t.Parallel()

	poorSleep := 55.0
	tests := []struct {
		name           string
		in             inputs
		wantStatus     Status
		wantConfidence Confidence
	}{
		{
			name:           "high score at baseline",
			in:             inputs{latest: whoop.RecoveryScore{RecoveryScore: 88, HRVRmssdMilli: 70}, baselineHRV: []float64{65, 66, 67, 68, 69, 70, 71}},
			wantStatus:     StatusGoHard,
			wantConfidence: ConfidenceHigh,
		},
		{
			name:           "high score below baseline",
			in:             inputs{latest: whoop.RecoveryScore{RecoveryScore: 88, HRVRmssdMilli: 50}, baselineHRV: []float64{70, 70, 70}},
			wantStatus:     StatusQuality,
			wantConfidence: ConfidenceMedium,
		},
		{
			name:           "moderate",
			in:             inputs{latest: whoop.RecoveryScore{RecoveryScore: 55}},
			wantStatus:     StatusModerate,
			wantConfidence: ConfidenceLow,
		},
		{
			name:           "heavy strain eases",
			in:             inputs{latest: whoop.RecoveryScore{RecoveryScore: 70}, strain: []float64{17, 18, 16}},
			wantStatus:     StatusModerate,
			wantConfidence: ConfidenceLow,
		},
		{
			name:           "poor sleep eases",
			in:             inputs{latest: whoop.RecoveryScore{RecoveryScore: 40}, sleepPercent: &poorSleep},
			wantStatus:     StatusRest,
			wantConfidence: ConfidenceLow,
		},
		{
			name:           "calibrating is low confidence",
			in:             inputs{latest: whoop.RecoveryScore{RecoveryScore: 20, UserCalibrating: true}, baselineHRV: []float64{1, 2, 3, 4, 5, 6, 7}},
			wantStatus:     StatusRest,
			wantConfidence: ConfidenceLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := evaluate(tt.in, testNow)
			if got.Recommendation.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", got.Recommendation.Status, tt.wantStatus)
			}
			if got.Recommendation.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %s, want %s", got.Recommendation.Confidence, tt.wantConfidence)
			}
			if got.Snapshot.Recommendation != got.Recommendation.Headline {
				t.Errorf("snapshot text %q does not match headline %q", got.Snapshot.Recommendation, got.Recommendation.Headline)
			}
		})
	}
}

func TestEaseBottomsOut(t *testing.T) {
	t.Parallel()

	want := []Status{StatusQuality, StatusModerate, StatusEasy, StatusRest, StatusRest}
	var got []Status
	for _, s := range Statuses {
		got = append(got, ease(s))
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ease() mismatch (-want +got):\n%s", diff)
	}
}

func newTestEngine(t *testing.T) (*Engine, *repository.Repository, *cache.Memory[Evaluation]) {
	t.Helper()
	sqlDB, err := db.Open(context.Background(), db.InMemory)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := repository.New(sqlDB)
	c := cache.NewMemory[Evaluation](time.Hour)
	t.Cleanup(func() { _ = c.Close() })

	e := NewEngine(repo, c, xslog.Discard())
	e.now = func() time.Time { return testNow }
	return e, repo, c
}

func TestEngineEvaluate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e, repo, c := newTestEngine(t)

	if _, err := e.Evaluate(ctx, testNow); !errors.Is(err, ErrNoData) {
		t.Fatalf("Evaluate() on empty store error = %v, want ErrNoData", err)
	}

	for i := range 4 {
		start := testNow.AddDate(0, 0, -3+i)
		end := start.Add(24 * time.Hour)
		cycle := whoop.Cycle{
			ID: int64(i + 1), UserID: 1, CreatedAt: start, UpdatedAt: start, Start: start, End: &end,
			TimezoneOffset: "+00:00", ScoreState: whoop.ScoreStateScored,
			Score: &whoop.CycleScore{Strain: 10},
		}
		if err := repo.Cycles.Upsert(ctx, &cycle); err != nil {
			t.Fatal(err)
		}
		rec := whoop.Recovery{
			CycleID: int64(i + 1), SleepID: "s", UserID: 1, CreatedAt: start, UpdatedAt: start,
			ScoreState: whoop.ScoreStateScored,
			Score:      &whoop.RecoveryScore{RecoveryScore: 60 + float64(i)*8, HRVRmssdMilli: 60},
		}
		if err := repo.Recoveries.Upsert(ctx, &rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := e.Evaluate(ctx, testNow)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got.Snapshot.Score != 84 || got.Recommendation.Status != StatusGoHard {
		t.Errorf("Evaluate() = score %d status %s, want 84 goHard", got.Snapshot.Score, got.Recommendation.Status)
	}
	if got.Recommendation.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %s, want medium", got.Recommendation.Confidence)
	}

	p, err := repo.Predictions.Get(ctx, DayKey(testNow))
	if err != nil || p == nil {
		t.Fatalf("prediction not persisted: %v", err)
	}
	var stored DailyRecommendation
	if err := go_json.Unmarshal(p.Recommendation, &stored); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got.Recommendation, stored); diff != "" {
		t.Errorf("persisted recommendation mismatch (-want +got):\n%s", diff)
	}

	if c.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", c.Len())
	}

	// a cached evaluation is served without touching the store
	if err := repo.DeleteDerived(ctx); err != nil {
		t.Fatal(err)
	}
	again, err := e.Evaluate(ctx, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("cached Evaluate() mismatch (-want +got):\n%s", diff)
	}
	if p, _ := repo.Predictions.Get(ctx, DayKey(testNow)); p != nil {
		t.Error("cache hit rewrote the prediction")
	}
}

func TestEngineWatchInvalidatesOnDataChange(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	e, _, c := newTestEngine(t)
	bus := events.NewMemoryBus()

	done := make(chan struct{})
	go func() {
		e.Watch(ctx, bus)
		close(done)
	}()

	for _, topic := range []events.Topic{events.DataSyncCompleted, events.DataWindowChanged} {
		if err := c.Set(ctx, DayKey(testNow), Evaluation{Day: DayKey(testNow)}); err != nil {
			t.Fatal(err)
		}

		// Subscribe races with the goroutine start, so publish until the
		// watcher has seen one.
		deadline := time.Now().Add(2 * time.Second)
		for c.Len() != 0 && time.Now().Before(deadline) {
			if err := bus.Publish(ctx, events.New(topic)); err != nil {
				t.Fatal(err)
			}
			time.Sleep(10 * time.Millisecond)
		}
		if c.Len() != 0 {
			t.Errorf("cache still holds %d entries after %s", c.Len(), topic)
		}
	}

	cancel()
	<-done
}
