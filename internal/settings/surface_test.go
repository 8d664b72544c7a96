package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUpdateHistoricalWindowRejectsInvalid(t *testing.T) {
	t.Parallel()

	for _, years := range []int{-1, 1, 4, 11, 25} {
		f := newFixture(5)
		c, err := f.surface.UpdateHistoricalWindow(context.Background(), years)
		if !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("UpdateHistoricalWindow(%d) error = %v, want %v", years, err, ErrInvalidWindow)
		}
		if c != nil {
			t.Errorf("UpdateHistoricalWindow(%d) confirmation = %+v, want nil", years, c)
		}
		if f.windows.writes != 0 {
			t.Errorf("UpdateHistoricalWindow(%d) wrote the store %d times", years, f.windows.writes)
		}
	}
}

func TestUpdateHistoricalWindowUnchanged(t *testing.T) {
	t.Parallel()

	f := newFixture(7)
	c, err := f.surface.UpdateHistoricalWindow(context.Background(), 7)
	if err != nil {
		t.Fatalf("UpdateHistoricalWindow() error = %v", err)
	}
	if c != nil {
		t.Errorf("confirmation = %+v, want nil", c)
	}
	if diff := cmp.Diff([]string(nil), f.rec.list()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateHistoricalWindowConfirm(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(5)

	c, err := f.surface.UpdateHistoricalWindow(ctx, AllTime)
	if err != nil {
		t.Fatalf("UpdateHistoricalWindow() error = %v", err)
	}
	if c == nil || c.Action != OpChangeWindow || c.Years != AllTime {
		t.Fatalf("confirmation = %+v, want change_window for all-time", c)
	}
	if f.windows.years != AllTime {
		t.Errorf("persisted window = %d before confirmation, want %d", f.windows.years, AllTime)
	}
	if got := f.surface.State().HistoricalWindowYears; got != AllTime {
		t.Errorf("State().HistoricalWindowYears = %d, want %d", got, AllTime)
	}
	if len(f.rec.list()) != 0 {
		t.Errorf("collaborators called before confirmation: %v", f.rec.list())
	}

	if err := f.surface.Confirm(ctx, c); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	want := []string{"invalidate", "reset", "publish:data_window_changed"}
	if diff := cmp.Diff(want, f.rec.list()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if st := f.surface.State(); st.Busy() || st.InFlight != OpNone {
		t.Errorf("State() after confirm = %+v, want idle", st)
	}
}

func TestUpdateHistoricalWindowDecline(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(5)

	c, err := f.surface.UpdateHistoricalWindow(ctx, 8)
	if err != nil {
		t.Fatalf("UpdateHistoricalWindow() error = %v", err)
	}
	if err := f.surface.Decline(c); err != nil {
		t.Fatalf("Decline() error = %v", err)
	}

	if f.windows.years != 8 {
		t.Errorf("persisted window = %d after decline, want 8", f.windows.years)
	}
	if len(f.rec.list()) != 0 {
		t.Errorf("collaborators called after decline: %v", f.rec.list())
	}
}

func TestConfirmationResolvesOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(5)

	c, err := f.surface.RequestClearAnalysisCache()
	if err != nil {
		t.Fatalf("RequestClearAnalysisCache() error = %v", err)
	}
	if err := f.surface.Confirm(ctx, c); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if err := f.surface.Confirm(ctx, c); !errors.Is(err, ErrConfirmationResolved) {
		t.Errorf("second Confirm() error = %v, want %v", err, ErrConfirmationResolved)
	}
	if err := f.surface.Decline(c); !errors.Is(err, ErrConfirmationResolved) {
		t.Errorf("Decline() after Confirm() error = %v, want %v", err, ErrConfirmationResolved)
	}
	if err := f.surface.Confirm(ctx, nil); !errors.Is(err, ErrConfirmationResolved) {
		t.Errorf("Confirm(nil) error = %v, want %v", err, ErrConfirmationResolved)
	}

	if diff := cmp.Diff([]string{"invalidate"}, f.rec.list()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestClearAnalysisCache(t *testing.T) {
	t.Parallel()

	t.Run("declined", func(t *testing.T) {
		t.Parallel()
		f := newFixture(5)
		c, err := f.surface.RequestClearAnalysisCache()
		if err != nil {
			t.Fatalf("RequestClearAnalysisCache() error = %v", err)
		}
		if err := f.surface.Decline(c); err != nil {
			t.Fatalf("Decline() error = %v", err)
		}
		if len(f.rec.list()) != 0 {
			t.Errorf("collaborators called: %v", f.rec.list())
		}
	})

	t.Run("confirmed only invalidates", func(t *testing.T) {
		t.Parallel()
		f := newFixture(5)
		c, err := f.surface.RequestClearAnalysisCache()
		if err != nil {
			t.Fatalf("RequestClearAnalysisCache() error = %v", err)
		}
		if err := f.surface.Confirm(context.Background(), c); err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if diff := cmp.Diff([]string{"invalidate"}, f.rec.list()); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
		if f.surface.State().IsClearingCache {
			t.Error("IsClearingCache still set")
		}
	})
}

func TestResetAllData(t *testing.T) {
	t.Parallel()

	t.Run("refused while syncing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(5)
		f.syncer.syncing.Store(true)
		c, err := f.surface.RequestResetAllData()
		if !errors.Is(err, ErrSyncInProgress) {
			t.Errorf("RequestResetAllData() error = %v, want %v", err, ErrSyncInProgress)
		}
		if c != nil {
			t.Errorf("confirmation = %+v, want nil", c)
		}
	})

	t.Run("sync started before confirm", func(t *testing.T) {
		t.Parallel()
		f := newFixture(5)
		c, err := f.surface.RequestResetAllData()
		if err != nil {
			t.Fatalf("RequestResetAllData() error = %v", err)
		}
		f.syncer.syncing.Store(true)
		if err := f.surface.Confirm(context.Background(), c); !errors.Is(err, ErrSyncInProgress) {
			t.Errorf("Confirm() error = %v, want %v", err, ErrSyncInProgress)
		}
		if len(f.rec.list()) != 0 {
			t.Errorf("collaborators called: %v", f.rec.list())
		}

		// the refused confirmation stays pending
		f.syncer.syncing.Store(false)
		if err := f.surface.Confirm(context.Background(), c); err != nil {
			t.Fatalf("Confirm() retry error = %v", err)
		}
		if diff := cmp.Diff([]string{"reset"}, f.rec.list()); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		t.Parallel()
		f := newFixture(5)
		c, err := f.surface.RequestResetAllData()
		if err != nil {
			t.Fatalf("RequestResetAllData() error = %v", err)
		}
		if err := f.surface.Confirm(context.Background(), c); err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if diff := cmp.Diff([]string{"reset"}, f.rec.list()); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDestructiveOperationsAreExclusive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(5)
	f.syncer.gate = make(chan struct{})
	f.syncer.entered = make(chan struct{})

	reset, err := f.surface.RequestResetAllData()
	if err != nil {
		t.Fatalf("RequestResetAllData() error = %v", err)
	}
	clearCache, err := f.surface.RequestClearAnalysisCache()
	if err != nil {
		t.Fatalf("RequestClearAnalysisCache() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- f.surface.Confirm(ctx, reset) }()
	<-f.syncer.entered

	st := f.surface.State()
	if !st.IsResetting || st.InFlight != OpReset {
		t.Errorf("State() during reset = %+v, want resetting", st)
	}
	if st.IsSyncing {
		t.Errorf("State() during reset reports IsSyncing and IsResetting together: %+v", st)
	}
	if st.SyncProgress != "reset: fetching cycles" {
		t.Errorf("State().SyncProgress during reset = %q, want the syncer's progress", st.SyncProgress)
	}
	if err := f.surface.Confirm(ctx, clearCache); !errors.Is(err, ErrOperationInFlight) {
		t.Errorf("Confirm(clear) during reset error = %v, want %v", err, ErrOperationInFlight)
	}
	if _, err := f.surface.RequestClearAnalysisCache(); !errors.Is(err, ErrOperationInFlight) {
		t.Errorf("RequestClearAnalysisCache() during reset error = %v, want %v", err, ErrOperationInFlight)
	}
	if _, err := f.surface.RequestResetAllData(); !errors.Is(err, ErrOperationInFlight) {
		t.Errorf("RequestResetAllData() during reset error = %v, want %v", err, ErrOperationInFlight)
	}

	close(f.syncer.gate)
	if err := <-done; err != nil {
		t.Fatalf("Confirm(reset) error = %v", err)
	}
	if st := f.surface.State(); st.Busy() || st.InFlight != OpNone {
		t.Errorf("State() after reset = %+v, want idle", st)
	}

	// the clear refused during the reset is still pending
	if err := f.surface.Confirm(ctx, clearCache); err != nil {
		t.Fatalf("Confirm(clear) after reset error = %v", err)
	}
	if diff := cmp.Diff([]string{"reset", "invalidate"}, f.rec.list()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateHistoricalWindowRefusedWhileBusy(t *testing.T) {
	t.Parallel()

	t.Run("during reset", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		f := newFixture(5)
		f.syncer.gate = make(chan struct{})
		f.syncer.entered = make(chan struct{})

		reset, err := f.surface.RequestResetAllData()
		if err != nil {
			t.Fatalf("RequestResetAllData() error = %v", err)
		}
		done := make(chan error, 1)
		go func() { done <- f.surface.Confirm(ctx, reset) }()
		<-f.syncer.entered

		c, err := f.surface.UpdateHistoricalWindow(ctx, 8)
		if !errors.Is(err, ErrOperationInFlight) {
			t.Errorf("UpdateHistoricalWindow() error = %v, want %v", err, ErrOperationInFlight)
		}
		if c != nil {
			t.Errorf("confirmation = %+v, want nil", c)
		}

		close(f.syncer.gate)
		if err := <-done; err != nil {
			t.Fatalf("Confirm(reset) error = %v", err)
		}
		f.syncer.gate, f.syncer.entered = nil, nil
		if f.windows.years != 5 || f.windows.writes != 0 {
			t.Errorf("persisted window = %d after %d writes, want 5 untouched", f.windows.years, f.windows.writes)
		}

		// once idle the change goes through and its reload runs
		c, err = f.surface.UpdateHistoricalWindow(ctx, 8)
		if err != nil || c == nil {
			t.Fatalf("UpdateHistoricalWindow() = %+v, %v, want a confirmation", c, err)
		}
		if err := f.surface.Confirm(ctx, c); err != nil {
			t.Fatalf("Confirm(window) error = %v", err)
		}
		want := []string{"reset", "invalidate", "reset", "publish:data_window_changed"}
		if diff := cmp.Diff(want, f.rec.list()); diff != "" {
			t.Errorf("calls mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("during sync", func(t *testing.T) {
		t.Parallel()
		f := newFixture(5)
		f.syncer.syncing.Store(true)

		c, err := f.surface.UpdateHistoricalWindow(context.Background(), 8)
		if !errors.Is(err, ErrSyncInProgress) {
			t.Errorf("UpdateHistoricalWindow() error = %v, want %v", err, ErrSyncInProgress)
		}
		if c != nil || f.windows.writes != 0 {
			t.Errorf("confirmation = %+v, writes = %d, want nothing persisted", c, f.windows.writes)
		}
	})
}

func TestFailureClearsFlagAndRecordsError(t *testing.T) {
	t.Parallel()

	cause := errors.New("whoop unavailable")
	f := newFixture(5)
	f.syncer.resetErr = cause

	c, err := f.surface.RequestResetAllData()
	if err != nil {
		t.Fatalf("RequestResetAllData() error = %v", err)
	}
	err = f.surface.Confirm(context.Background(), c)
	if !errors.Is(err, cause) {
		t.Fatalf("Confirm() error = %v, want wrapping %v", err, cause)
	}

	st := f.surface.State()
	if st.IsResetting || st.InFlight != OpNone {
		t.Errorf("State() after failure = %+v, want idle", st)
	}
	if st.LastError == nil || st.LastError.Operation != OpReset || !errors.Is(st.LastError, cause) {
		t.Errorf("LastError = %v, want reset failure wrapping %v", st.LastError, cause)
	}

	f.surface.ClearError(context.Background())
	if f.surface.LastError() != nil {
		t.Errorf("LastError() after ClearError = %v, want nil", f.surface.LastError())
	}
}

func TestCollaboratorContextIsDetached(t *testing.T) {
	t.Parallel()

	f := newFixture(5)
	f.syncer.gate = make(chan struct{})
	f.syncer.entered = make(chan struct{})

	c, err := f.surface.RequestResetAllData()
	if err != nil {
		t.Fatalf("RequestResetAllData() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.surface.Confirm(ctx, c) }()
	<-f.syncer.entered
	cancel()
	close(f.syncer.gate)

	if err := <-done; err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if f.syncer.ctxErr != nil {
		t.Errorf("collaborator context error = %v, want nil", f.syncer.ctxErr)
	}
}

func TestRequestReauthorization(t *testing.T) {
	t.Parallel()

	t.Run("flag set during call", func(t *testing.T) {
		t.Parallel()
		f := newFixture(5)
		if err := f.surface.RequestReauthorization(context.Background()); err != nil {
			t.Fatalf("RequestReauthorization() error = %v", err)
		}
		if !f.authorizer.seen.IsAuthorizing {
			t.Error("IsAuthorizing was not set during authorization")
		}
		if f.surface.State().IsAuthorizing {
			t.Error("IsAuthorizing still set after authorization")
		}
	})

	t.Run("failure clears flag", func(t *testing.T) {
		t.Parallel()
		f := newFixture(5)
		f.authorizer.err = errors.New("denied")
		if err := f.surface.RequestReauthorization(context.Background()); err == nil {
			t.Fatal("RequestReauthorization() error = nil, want error")
		}
		st := f.surface.State()
		if st.IsAuthorizing {
			t.Error("IsAuthorizing still set after failure")
		}
		if st.LastError == nil || st.LastError.Operation != OpAuthorize {
			t.Errorf("LastError = %v, want authorize failure", st.LastError)
		}
	})

	t.Run("declined authorization is not an error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(5)
		f.authorizer.ok = false
		if err := f.surface.RequestReauthorization(context.Background()); err != nil {
			t.Fatalf("RequestReauthorization() error = %v", err)
		}
	})
}

func TestClassifyAllWorkouts(t *testing.T) {
	t.Parallel()

	f := newFixture(5)
	f.classifier.n = 12
	if err := f.surface.ClassifyAllWorkouts(context.Background()); err != nil {
		t.Fatalf("ClassifyAllWorkouts() error = %v", err)
	}
	want := []string{"classify", "publish:data_sync_completed"}
	if diff := cmp.Diff(want, f.rec.list()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if f.surface.State().IsClassifying {
		t.Error("IsClassifying still set")
	}
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(5)
	ch, unsubscribe := f.surface.Subscribe()

	if err := f.surface.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	st := <-ch
	if st.HistoricalWindowYears != 5 {
		t.Errorf("HistoricalWindowYears = %d, want 5", st.HistoricalWindowYears)
	}

	if _, err := f.surface.UpdateHistoricalWindow(ctx, 9); err != nil {
		t.Fatalf("UpdateHistoricalWindow() error = %v", err)
	}
	st = <-ch
	if st.HistoricalWindowYears != 9 {
		t.Errorf("HistoricalWindowYears = %d, want 9", st.HistoricalWindowYears)
	}

	unsubscribe()
	unsubscribe()
	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}
}

func TestWindowOptions(t *testing.T) {
	t.Parallel()

	want := []int{0, 5, 6, 7, 8, 9, 10}
	if diff := cmp.Diff(want, WindowOptions()); diff != "" {
		t.Errorf("WindowOptions() mismatch (-want +got):\n%s", diff)
	}
	for _, years := range want {
		if !ValidWindow(years) {
			t.Errorf("ValidWindow(%d) = false", years)
		}
	}
	if got := WindowLabel(AllTime); got != "all-time" {
		t.Errorf("WindowLabel(0) = %q, want %q", got, "all-time")
	}
}
