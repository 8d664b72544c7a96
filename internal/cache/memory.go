package cache

import (
	"context"
	"sync"
	"time"
)

var _ Cache[int] = (*Memory[int])(nil)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

type Memory[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
	now     func() time.Time

	done      chan struct{}
	closeOnce sync.Once
	interval  time.Duration
}

func NewMemory[T any](ttl time.Duration) *Memory[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Memory[T]{
		entries:  make(map[string]entry[T]),
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
		interval: min(ttl, time.Minute),
	}
	go c.cleanupLoop()
	return c
}

func (c *Memory[T]) Get(_ context.Context, key string) (T, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(e.expiresAt) {
		var zero T
		return zero, false, nil
	}
	return e.value, true, nil
}

func (c *Memory[T]) Set(_ context.Context, key string, value T) error {
	c.mu.Lock()
	c.entries[key] = entry[T]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *Memory[T]) Invalidate(context.Context) error {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
	return nil
}

func (c *Memory[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Memory[T]) cleanupLoop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

func (c *Memory[T]) cleanup() {
	now := c.now()
	c.mu.Lock()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()
}

// Close stops the cleanup loop. It is safe to call more than once.
func (c *Memory[T]) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}
