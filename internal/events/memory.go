package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/garrettladley/pulse/internal/xslog"
)

const defaultBuffer = 16

var _ Bus = (*MemoryBus)(nil)

type subscription struct {
	ch     chan Event
	topics []Topic
}

func (s *subscription) wants(t Topic) bool {
	return len(s.topics) == 0 || slices.Contains(s.topics, t)
}

type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[*subscription]struct{}
	buffer int
	logger *slog.Logger
}

type MemoryBusOption func(*MemoryBus)

func WithBuffer(n int) MemoryBusOption {
	return func(b *MemoryBus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

func WithLogger(logger *slog.Logger) MemoryBusOption {
	return func(b *MemoryBus) {
		b.logger = logger
	}
}

func NewMemoryBus(opts ...MemoryBusOption) *MemoryBus {
	b := &MemoryBus{
		subs:   make(map[*subscription]struct{}),
		buffer: defaultBuffer,
		logger: xslog.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish never blocks. Subscribers with a full buffer miss the event.
func (b *MemoryBus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if !sub.wants(e.Topic) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			b.logger.WarnContext(ctx, "dropping event for slow subscriber",
				xslog.Topic(e.Topic.String()),
				xslog.EventID(e.ID.String()),
			)
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(topics ...Topic) (<-chan Event, func()) {
	sub := &subscription{
		ch:     make(chan Event, b.buffer),
		topics: topics,
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, sub)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
}
