package xsync

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/garrettladley/pulse/internal/client/whoop"
)

var notFound = &whoop.APIError{StatusCode: http.StatusNotFound, Message: "not found"}

// inSpan mirrors the API's start/end filtering.
func inSpan(t time.Time, p *whoop.ListParams) bool {
	if p.Start != nil && t.Before(*p.Start) {
		return false
	}
	if p.End != nil && !t.Before(*p.End) {
		return false
	}
	return true
}

// pageOf serves records two at a time, keyed by the index in NextToken.
func pageOf[T any](records []T, p *whoop.ListParams, start func(T) time.Time) *whoop.PaginatedResponse[T] {
	var filtered []T
	for _, r := range records {
		if inSpan(start(r), p) {
			filtered = append(filtered, r)
		}
	}

	offset := 0
	if p.NextToken != nil {
		offset = int((*p.NextToken)[0] - '0')
	}
	size := 2
	if p.Limit > 0 && p.Limit < size {
		size = p.Limit
	}
	end := min(offset+size, len(filtered))

	resp := &whoop.PaginatedResponse[T]{Records: filtered[offset:end]}
	if end < len(filtered) {
		next := string(rune('0' + end))
		resp.NextToken = &next
	}
	return resp
}

type fakeCycles struct {
	mu         sync.Mutex
	cycles     []whoop.Cycle
	recoveries map[int64]*whoop.Recovery
	sleeps     map[int64]*whoop.Sleep
	listCalls  atomic.Int32
	gets       atomic.Int32

	recoveryErr   error
	recoveryCalls atomic.Int32
}

func (f *fakeCycles) Get(_ context.Context, id int64) (*whoop.Cycle, error) {
	f.gets.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cycles {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, notFound
}

func (f *fakeCycles) List(_ context.Context, p *whoop.ListParams) (*whoop.PaginatedResponse[whoop.Cycle], error) {
	f.listCalls.Add(1)
	return pageOf(f.cycles, p, func(c whoop.Cycle) time.Time { return c.Start }), nil
}

func (f *fakeCycles) GetSleep(_ context.Context, id int64) (*whoop.Sleep, error) {
	if s, ok := f.sleeps[id]; ok {
		return s, nil
	}
	return nil, notFound
}

func (f *fakeCycles) GetRecovery(_ context.Context, id int64) (*whoop.Recovery, error) {
	f.recoveryCalls.Add(1)
	if f.recoveryErr != nil {
		return nil, f.recoveryErr
	}
	if r, ok := f.recoveries[id]; ok {
		return r, nil
	}
	return nil, notFound
}

type fakeRecoveries struct {
	recoveries []whoop.Recovery
	starts     map[int64]time.Time
}

func (f *fakeRecoveries) List(_ context.Context, p *whoop.ListParams) (*whoop.PaginatedResponse[whoop.Recovery], error) {
	return pageOf(f.recoveries, p, func(r whoop.Recovery) time.Time { return f.starts[r.CycleID] }), nil
}

type fakeSleeps struct{ sleeps []whoop.Sleep }

func (f *fakeSleeps) Get(context.Context, string) (*whoop.Sleep, error) { return nil, notFound }

func (f *fakeSleeps) List(_ context.Context, p *whoop.ListParams) (*whoop.PaginatedResponse[whoop.Sleep], error) {
	return pageOf(f.sleeps, p, func(s whoop.Sleep) time.Time { return s.Start }), nil
}

type fakeWorkouts struct {
	workouts []whoop.Workout
	err      error
}

func (f *fakeWorkouts) Get(context.Context, string) (*whoop.Workout, error) { return nil, notFound }

func (f *fakeWorkouts) List(_ context.Context, p *whoop.ListParams) (*whoop.PaginatedResponse[whoop.Workout], error) {
	if f.err != nil {
		return nil, f.err
	}
	return pageOf(f.workouts, p, func(w whoop.Workout) time.Time { return w.Start }), nil
}
