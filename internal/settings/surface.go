package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garrettladley/pulse/internal/events"
	"github.com/garrettladley/pulse/internal/xslog"
)

type flags struct {
	resetting     bool
	clearingCache bool
	authorizing   bool
	classifying   bool
}

type Surface struct {
	deps   Deps
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	flags    flags
	window   int
	inFlight Operation
	lastErr  *OperationError
	pending  map[uuid.UUID]*Confirmation

	subMu sync.Mutex
	subs  map[chan State]struct{}
}

func New(deps Deps, logger *slog.Logger) *Surface {
	return &Surface{
		deps:    deps,
		logger:  logger,
		now:     time.Now,
		pending: make(map[uuid.UUID]*Confirmation),
		subs:    make(map[chan State]struct{}),
	}
}

// Load reads the persisted historical window into the state.
func (s *Surface) Load(ctx context.Context) error {
	years, err := s.deps.Windows.GetHistoricalWindow(ctx)
	if err != nil {
		return fmt.Errorf("failed to load historical window: %w", err)
	}
	s.mu.Lock()
	s.window = years
	s.mu.Unlock()
	s.changed(ctx)
	return nil
}

func (s *Surface) State() State {
	s.mu.Lock()
	st := State{
		IsResetting:           s.flags.resetting,
		IsClearingCache:       s.flags.clearingCache,
		IsAuthorizing:         s.flags.authorizing,
		IsClassifying:         s.flags.classifying,
		HistoricalWindowYears: s.window,
		InFlight:              s.inFlight,
		LastError:             s.lastErr,
	}
	s.mu.Unlock()

	// a reset runs through the syncer; report it as resetting only
	st.IsSyncing = !st.IsResetting && s.deps.Syncer.IsSyncing()
	st.SyncProgress = s.deps.Syncer.Progress()
	return st
}

// Subscribe delivers the latest state after every change. Slow readers see
// only the most recent state. The returned func unsubscribes.
func (s *Surface) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, ch)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Surface) changed(ctx context.Context) {
	st := s.State()

	s.subMu.Lock()
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
	s.subMu.Unlock()

	s.publish(ctx, events.SettingsChanged)
}

func (s *Surface) publish(ctx context.Context, topic events.Topic) {
	if s.deps.Publisher == nil {
		return
	}
	if err := s.deps.Publisher.Publish(ctx, events.New(topic)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", xslog.Topic(topic.String()), xslog.Error(err))
	}
}

// job describes one surface operation for run.
type job struct {
	op        Operation
	flag      *bool
	exclusive bool // claims the single in-flight slot
	idleSync  bool // refused while a sync runs
	conf      *Confirmation
}

// claim checks j against the current state and, when it may start, resolves
// its confirmation and sets its flags. A refused job leaves the confirmation
// pending. Callers hold s.mu.
func (s *Surface) claim(j job) error {
	if j.conf != nil {
		if _, ok := s.pending[j.conf.ID]; !ok {
			return ErrConfirmationResolved
		}
	}
	if *j.flag || (j.exclusive && s.inFlight != OpNone) {
		return ErrOperationInFlight
	}
	if j.idleSync && s.deps.Syncer.IsSyncing() {
		return ErrSyncInProgress
	}
	if j.conf != nil {
		delete(s.pending, j.conf.ID)
	}
	if j.exclusive {
		s.inFlight = j.op
	}
	*j.flag = true
	return nil
}

// run claims j, calls fn with a context detached from the caller's
// cancellation and clears the job's flags on every path.
func (s *Surface) run(ctx context.Context, j job, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	err := s.claim(j)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.changed(ctx)

	start := s.now()
	logger := s.logger.With(xslog.Operation(j.op.String()))
	logger.InfoContext(ctx, "operation started")

	err = fn(context.WithoutCancel(ctx))

	var opErr *OperationError
	if err != nil {
		opErr = &OperationError{Operation: j.op, Err: err, At: s.now()}
	}

	s.mu.Lock()
	*j.flag = false
	if j.exclusive {
		s.inFlight = OpNone
	}
	if opErr != nil {
		s.lastErr = opErr
	}
	s.mu.Unlock()
	s.changed(ctx)

	if opErr != nil {
		logger.ErrorContext(ctx, "operation failed", xslog.Error(err), xslog.Duration(time.Since(start)))
		return opErr
	}
	logger.InfoContext(ctx, "operation completed", xslog.Duration(time.Since(start)))
	return nil
}

func (s *Surface) RequestReauthorization(ctx context.Context) error {
	return s.run(ctx, job{op: OpAuthorize, flag: &s.flags.authorizing}, func(ctx context.Context) error {
		ok, err := s.deps.Authorizer.RequestAuthorization(ctx)
		if err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "reauthorization finished", xslog.Authorized(ok))
		return nil
	})
}

// UpdateHistoricalWindow persists years at once. A changed value returns a
// confirmation for reloading the store; an unchanged value returns nil.
func (s *Surface) UpdateHistoricalWindow(ctx context.Context, years int) (*Confirmation, error) {
	if !ValidWindow(years) {
		return nil, ErrInvalidWindow
	}

	current, err := s.deps.Windows.GetHistoricalWindow(ctx)
	if err != nil {
		return nil, s.fail(ctx, OpChangeWindow, fmt.Errorf("failed to read historical window: %w", err))
	}
	if current == years {
		s.mu.Lock()
		s.window = years
		s.mu.Unlock()
		return nil, nil
	}

	// hold the in-flight slot while saving so a reset cannot load data for
	// a window other than the stored one
	s.mu.Lock()
	switch {
	case s.inFlight != OpNone:
		s.mu.Unlock()
		return nil, ErrOperationInFlight
	case s.deps.Syncer.IsSyncing():
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	s.inFlight = OpChangeWindow
	s.mu.Unlock()

	err = s.deps.Windows.SetHistoricalWindow(ctx, years)

	s.mu.Lock()
	s.inFlight = OpNone
	if err == nil {
		s.window = years
	}
	s.mu.Unlock()
	if err != nil {
		return nil, s.fail(ctx, OpChangeWindow, fmt.Errorf("failed to save historical window: %w", err))
	}
	s.logger.InfoContext(ctx, "historical window saved", xslog.Years(years))
	s.changed(ctx)

	msg := fmt.Sprintf("Changing the historical window to %s reloads all data from WHOOP. Continue?", WindowLabel(years))
	return s.raise(OpChangeWindow, years, msg), nil
}

func (s *Surface) RequestClearAnalysisCache() (*Confirmation, error) {
	if s.State().InFlight != OpNone {
		return nil, ErrOperationInFlight
	}
	return s.raise(OpClearCache, 0, "Clear cached readiness analysis? Synced WHOOP data is kept."), nil
}

func (s *Surface) RequestResetAllData() (*Confirmation, error) {
	st := s.State()
	if st.IsSyncing {
		return nil, ErrSyncInProgress
	}
	if st.InFlight != OpNone {
		return nil, ErrOperationInFlight
	}
	msg := fmt.Sprintf("Delete derived data and download the last %s from WHOOP again?", WindowLabel(st.HistoricalWindowYears))
	return s.raise(OpReset, 0, msg), nil
}

func (s *Surface) ClassifyAllWorkouts(ctx context.Context) error {
	return s.run(ctx, job{op: OpClassify, flag: &s.flags.classifying}, func(ctx context.Context) error {
		n, err := s.deps.Classifier.AutoClassifyWorkoutIntents(ctx)
		if err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "classified workouts", xslog.Count(n))
		s.publish(ctx, events.DataSyncCompleted)
		return nil
	})
}

// Confirm resolves c and runs its action. A confirmation refused because
// another operation or a sync is running stays pending and can be confirmed
// again later.
func (s *Surface) Confirm(ctx context.Context, c *Confirmation) error {
	if c == nil {
		return ErrConfirmationResolved
	}

	switch c.Action {
	case OpChangeWindow:
		j := job{op: OpChangeWindow, flag: &s.flags.resetting, exclusive: true, idleSync: true, conf: c}
		return s.run(ctx, j, func(ctx context.Context) error {
			if err := s.deps.Cache.Invalidate(ctx); err != nil {
				return fmt.Errorf("failed to invalidate cache: %w", err)
			}
			if err := s.deps.Syncer.ResetAllData(ctx); err != nil {
				return fmt.Errorf("failed to reload data: %w", err)
			}
			s.publish(ctx, events.DataWindowChanged)
			return nil
		})
	case OpClearCache:
		j := job{op: OpClearCache, flag: &s.flags.clearingCache, exclusive: true, conf: c}
		return s.run(ctx, j, func(ctx context.Context) error {
			return s.deps.Cache.Invalidate(ctx)
		})
	case OpReset:
		j := job{op: OpReset, flag: &s.flags.resetting, exclusive: true, idleSync: true, conf: c}
		return s.run(ctx, j, func(ctx context.Context) error {
			return s.deps.Syncer.ResetAllData(ctx)
		})
	default:
		if err := s.resolve(c); err != nil {
			return err
		}
		return fmt.Errorf("unknown confirmation action %q", c.Action)
	}
}

// Decline resolves c without running its action. A declined window change
// keeps the already persisted value.
func (s *Surface) Decline(c *Confirmation) error {
	if err := s.resolve(c); err != nil {
		return err
	}
	s.logger.Info("confirmation declined", xslog.Operation(c.Action.String()))
	return nil
}

func (s *Surface) raise(action Operation, years int, msg string) *Confirmation {
	c := &Confirmation{
		ID:      uuid.New(),
		Action:  action,
		Years:   years,
		Message: msg,
	}
	s.mu.Lock()
	s.pending[c.ID] = c
	s.mu.Unlock()
	return c
}

func (s *Surface) resolve(c *Confirmation) error {
	if c == nil {
		return ErrConfirmationResolved
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[c.ID]; !ok {
		return ErrConfirmationResolved
	}
	delete(s.pending, c.ID)
	return nil
}

// fail records err as the last error for op outside of run.
func (s *Surface) fail(ctx context.Context, op Operation, err error) error {
	opErr := &OperationError{Operation: op, Err: err, At: s.now()}
	s.mu.Lock()
	s.lastErr = opErr
	s.mu.Unlock()
	s.logger.ErrorContext(ctx, "operation failed", xslog.Operation(op.String()), xslog.Error(err))
	s.changed(ctx)
	return opErr
}

// LastError returns the most recent failure, or nil.
func (s *Surface) LastError() *OperationError {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError dismisses the last failure.
func (s *Surface) ClearError(ctx context.Context) {
	s.mu.Lock()
	s.lastErr = nil
	s.mu.Unlock()
	s.changed(ctx)
}
