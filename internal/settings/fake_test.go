package settings

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/garrettladley/pulse/internal/events"
	"github.com/garrettladley/pulse/internal/xslog"
)

// recorder keeps the order in which collaborators were called.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// fakeSyncer holds the sync slot during ResetAllData the way xsync.Service
// does.
type fakeSyncer struct {
	rec      *recorder
	syncing  atomic.Bool
	progress atomic.Value
	resetErr error
	// gate, when set, blocks ResetAllData until closed
	gate    chan struct{}
	entered chan struct{}
	ctxErr  error
}

func (f *fakeSyncer) PerformSmartSync(context.Context) error {
	f.rec.add("sync")
	return nil
}

func (f *fakeSyncer) ResetAllData(ctx context.Context) error {
	f.rec.add("reset")
	f.syncing.Store(true)
	f.progress.Store("reset: fetching cycles")
	defer func() {
		f.syncing.Store(false)
		f.progress.Store("")
	}()
	if f.entered != nil {
		close(f.entered)
	}
	if f.gate != nil {
		<-f.gate
	}
	f.ctxErr = ctx.Err()
	return f.resetErr
}

func (f *fakeSyncer) IsSyncing() bool  { return f.syncing.Load() }
func (f *fakeSyncer) Progress() string {
	p, _ := f.progress.Load().(string)
	return p
}

type fakeCache struct {
	rec *recorder
	err error
}

func (f *fakeCache) Invalidate(context.Context) error {
	f.rec.add("invalidate")
	return f.err
}

type fakeAuthorizer struct {
	rec *recorder
	ok  bool
	err error
	// seen is the surface state observed during the call
	surface *Surface
	seen    State
}

func (f *fakeAuthorizer) RequestAuthorization(context.Context) (bool, error) {
	f.rec.add("authorize")
	if f.surface != nil {
		f.seen = f.surface.State()
	}
	return f.ok, f.err
}

type fakeClassifier struct {
	rec *recorder
	n   int
	err error
}

func (f *fakeClassifier) AutoClassifyWorkoutIntents(context.Context) (int, error) {
	f.rec.add("classify")
	return f.n, f.err
}

type fakeWindows struct {
	mu     sync.Mutex
	years  int
	writes int
}

func (f *fakeWindows) GetHistoricalWindow(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.years, nil
}

func (f *fakeWindows) SetHistoricalWindow(_ context.Context, years int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.years = years
	f.writes++
	return nil
}

type fakePublisher struct {
	rec *recorder
}

func (f *fakePublisher) Publish(_ context.Context, e events.Event) error {
	if e.Topic != events.SettingsChanged {
		f.rec.add("publish:" + e.Topic.String())
	}
	return nil
}

type fixture struct {
	rec        *recorder
	syncer     *fakeSyncer
	cache      *fakeCache
	authorizer *fakeAuthorizer
	classifier *fakeClassifier
	windows    *fakeWindows
	surface    *Surface
}

func newFixture(years int) *fixture {
	rec := &recorder{}
	f := &fixture{
		rec:        rec,
		syncer:     &fakeSyncer{rec: rec},
		cache:      &fakeCache{rec: rec},
		authorizer: &fakeAuthorizer{rec: rec, ok: true},
		classifier: &fakeClassifier{rec: rec},
		windows:    &fakeWindows{years: years},
	}
	f.surface = New(Deps{
		Authorizer: f.authorizer,
		Syncer:     f.syncer,
		Cache:      f.cache,
		Classifier: f.classifier,
		Windows:    f.windows,
		Publisher:  &fakePublisher{rec: rec},
	}, xslog.Discard())
	f.authorizer.surface = f.surface
	return f
}
