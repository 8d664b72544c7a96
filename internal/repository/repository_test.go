package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/oauth2"

	"github.com/garrettladley/pulse/internal/client/whoop"
	"github.com/garrettladley/pulse/internal/db"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	sqlDB, err := db.Open(context.Background(), db.InMemory)
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return New(sqlDB)
}

var day0 = time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)

func testWorkout(id string, start time.Time, sport string, updated time.Time) whoop.Workout {
	return whoop.Workout{
		ID:             id,
		UserID:         7,
		CreatedAt:      start,
		UpdatedAt:      updated,
		Start:          start,
		End:            start.Add(45 * time.Minute),
		TimezoneOffset: "+00:00",
		SportName:      sport,
		ScoreState:     whoop.ScoreStateScored,
		Score: &whoop.WorkoutScore{
			Strain:           11.2,
			AverageHeartRate: 141,
			MaxHeartRate:     172,
			ZoneDurations:    whoop.WorkoutZones{ZoneTwoMilli: 1_800_000, ZoneThreeMilli: 900_000},
		},
	}
}

func testRecovery(cycleID int64, score float64, hrv float64) whoop.Recovery {
	return whoop.Recovery{
		CycleID:    cycleID,
		SleepID:    "sleep",
		UserID:     7,
		CreatedAt:  day0,
		UpdatedAt:  day0,
		ScoreState: whoop.ScoreStateScored,
		Score:      &whoop.RecoveryScore{RecoveryScore: score, HRVRmssdMilli: hrv, RestingHeartRate: 52},
	}
}

func TestCycleRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	end := day0.Add(20 * time.Hour)
	want := whoop.Cycle{
		ID:             101,
		UserID:         7,
		CreatedAt:      day0,
		UpdatedAt:      day0,
		Start:          day0,
		End:            &end,
		TimezoneOffset: "-05:00",
		ScoreState:     whoop.ScoreStateScored,
		Score:          &whoop.CycleScore{Strain: 12.5, Kilojoule: 9000, AverageHeartRate: 70, MaxHeartRate: 180},
	}
	if err := repo.Cycles.Upsert(ctx, &want); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.Cycles.Get(ctx, 101)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}

	missing, err := repo.Cycles.Get(ctx, 999)
	if err != nil || missing != nil {
		t.Errorf("Get(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestCycleDateRangeCursor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	var cycles []whoop.Cycle
	for i := range 5 {
		start := day0.AddDate(0, 0, i)
		cycles = append(cycles, whoop.Cycle{
			ID: int64(i + 1), UserID: 7, CreatedAt: start, UpdatedAt: start, Start: start,
			TimezoneOffset: "+00:00", ScoreState: whoop.ScoreStatePendingScore,
		})
	}
	if err := repo.Cycles.UpsertBatch(ctx, cycles); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	var ids []int64
	cursor := &CursorParams{Limit: 2}
	for {
		res, err := repo.Cycles.GetByDateRange(ctx, day0, day0.AddDate(0, 1, 0), cursor)
		if err != nil {
			t.Fatalf("GetByDateRange() error = %v", err)
		}
		for _, c := range res.Records {
			ids = append(ids, c.ID)
		}
		if res.NextCursor == nil {
			break
		}
		cursor.Cursor = res.NextCursor
	}
	if diff := cmp.Diff([]int64{5, 4, 3, 2, 1}, ids); diff != "" {
		t.Errorf("paged ids mismatch (-want +got):\n%s", diff)
	}

	pending, err := repo.Cycles.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() error = %v", err)
	}
	if len(pending) != 5 {
		t.Errorf("GetPending() = %d cycles, want 5", len(pending))
	}
}

func TestRecoveriesLatestScored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	for i := range 3 {
		start := day0.AddDate(0, 0, i)
		c := whoop.Cycle{ID: int64(i + 1), UserID: 7, CreatedAt: start, UpdatedAt: start, Start: start, TimezoneOffset: "+00:00", ScoreState: whoop.ScoreStateScored}
		if err := repo.Cycles.Upsert(ctx, &c); err != nil {
			t.Fatal(err)
		}
	}
	pending := whoop.Recovery{CycleID: 3, SleepID: "s3", UserID: 7, CreatedAt: day0, UpdatedAt: day0, ScoreState: whoop.ScoreStatePendingScore}
	recs := []whoop.Recovery{testRecovery(1, 40, 50), testRecovery(2, 85, 70), pending}
	if err := repo.Recoveries.UpsertBatch(ctx, recs); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	got, err := repo.Recoveries.GetLatestScored(ctx, 5)
	if err != nil {
		t.Fatalf("GetLatestScored() error = %v", err)
	}
	var ids []int64
	for _, r := range got {
		ids = append(ids, r.CycleID)
	}
	if diff := cmp.Diff([]int64{2, 1}, ids); diff != "" {
		t.Errorf("GetLatestScored() ids mismatch (-want +got):\n%s", diff)
	}
}

func TestWorkoutIntentSurvivesUpsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	w := testWorkout("w1", day0, "running", day0)
	if err := repo.Workouts.Upsert(ctx, &w); err != nil {
		t.Fatal(err)
	}
	if err := repo.Workouts.SetIntent(ctx, "w1", "endurance"); err != nil {
		t.Fatalf("SetIntent() error = %v", err)
	}

	w.UpdatedAt = day0.Add(time.Hour)
	if err := repo.Workouts.Upsert(ctx, &w); err != nil {
		t.Fatal(err)
	}

	intent, err := repo.Workouts.GetIntent(ctx, "w1")
	if err != nil {
		t.Fatalf("GetIntent() error = %v", err)
	}
	if intent != "endurance" {
		t.Errorf("GetIntent() = %q, want endurance", intent)
	}

	if err := repo.Workouts.SetIntent(ctx, "nope", "tempo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetIntent(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestWorkoutDeleteDuplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	workouts := []whoop.Workout{
		testWorkout("old", day0, "running", day0),
		testWorkout("new", day0, "running", day0.Add(time.Hour)),
		testWorkout("other-sport", day0, "cycling", day0),
		testWorkout("later", day0.Add(2*time.Hour), "running", day0),
	}
	if err := repo.Workouts.UpsertBatch(ctx, workouts); err != nil {
		t.Fatal(err)
	}

	n, err := repo.Workouts.DeleteDuplicates(ctx)
	if err != nil {
		t.Fatalf("DeleteDuplicates() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteDuplicates() = %d, want 1", n)
	}

	for id, wantPresent := range map[string]bool{"old": false, "new": true, "other-sport": true, "later": true} {
		got, err := repo.Workouts.Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if (got != nil) != wantPresent {
			t.Errorf("workout %q present = %v, want %v", id, got != nil, wantPresent)
		}
	}
}

func TestDeleteDerived(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	w := testWorkout("w1", day0, "functional fitness", day0)
	if err := repo.Workouts.Upsert(ctx, &w); err != nil {
		t.Fatal(err)
	}
	if err := repo.Workouts.SetIntent(ctx, "w1", "strength"); err != nil {
		t.Fatal(err)
	}
	p := &Prediction{Day: "2025-03-01", Score: 82, Level: "excellent", Status: "goHard", Confidence: "high", Recommendation: []byte(`{}`), ComputedAt: day0}
	if err := repo.Predictions.Upsert(ctx, p); err != nil {
		t.Fatal(err)
	}

	if err := repo.DeleteDerived(ctx); err != nil {
		t.Fatalf("DeleteDerived() error = %v", err)
	}

	if got, _ := repo.Predictions.Get(ctx, "2025-03-01"); got != nil {
		t.Errorf("prediction survived DeleteDerived: %+v", got)
	}
	counts, err := repo.Workouts.CountByIntent(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 0 {
		t.Errorf("CountByIntent() = %v, want empty", counts)
	}
	if got, _ := repo.Workouts.Get(ctx, "w1"); got == nil {
		t.Error("source workout removed by DeleteDerived")
	}
}

func TestSettingsHistoricalWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	years, err := repo.Settings.GetHistoricalWindow(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if years != DefaultHistoricalWindowYears {
		t.Errorf("default window = %d, want %d", years, DefaultHistoricalWindowYears)
	}

	for _, want := range []int{8, 0} {
		if err := repo.Settings.SetHistoricalWindow(ctx, want); err != nil {
			t.Fatal(err)
		}
		got, err := repo.Settings.GetHistoricalWindow(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("GetHistoricalWindow() = %d, want %d", got, want)
		}
	}
}

func TestSyncState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	state, err := repo.SyncState.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&SyncState{}, state); diff != "" {
		t.Errorf("empty state mismatch (-want +got):\n%s", diff)
	}

	if err := repo.SyncState.UpdateLastSync(ctx, day0); err != nil {
		t.Fatal(err)
	}
	if err := repo.SyncState.UpdateBackfillWatermark(ctx, day0.AddDate(-1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := repo.SyncState.MarkBackfillComplete(ctx); err != nil {
		t.Fatal(err)
	}

	watermark := day0.AddDate(-1, 0, 0)
	want := &SyncState{BackfillComplete: true, BackfillWatermark: &watermark, LastSync: &day0}
	state, err = repo.SyncState.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}

	if err := repo.SyncState.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	state, _ = repo.SyncState.Get(ctx)
	if state.LastSync != nil || state.BackfillComplete {
		t.Errorf("Reset() left state %+v", state)
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.Tokens.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}

	tok := &oauth2.Token{AccessToken: "a1", RefreshToken: "r1", TokenType: "Bearer", Expiry: day0}
	if err := repo.Tokens.Upsert(ctx, tok); err != nil {
		t.Fatal(err)
	}
	// refreshed tokens without a new refresh token keep the old one
	if err := repo.Tokens.Upsert(ctx, &oauth2.Token{AccessToken: "a2", TokenType: "Bearer", Expiry: day0.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Tokens.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.AccessToken != "a2" || got.RefreshToken != "r1" || !got.Expiry.Equal(day0.Add(time.Hour)) {
		t.Errorf("Get() = %+v", got)
	}
}

func TestSettingsValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.Settings.GetValue(ctx, "oauth_state"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetValue(unset) error = %v, want ErrNotFound", err)
	}
	if err := repo.Settings.SetValue(ctx, "oauth_state", "abc"); err != nil {
		t.Fatal(err)
	}
	if got, err := repo.Settings.GetValue(ctx, "oauth_state"); err != nil || got != "abc" {
		t.Errorf("GetValue() = %q, %v", got, err)
	}
	if err := repo.Settings.DeleteValue(ctx, "oauth_state"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Settings.GetValue(ctx, "oauth_state"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetValue(deleted) error = %v, want ErrNotFound", err)
	}
}
