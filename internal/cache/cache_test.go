package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type sample struct {
	Score int    `json:"score"`
	Level string `json:"level"`
}

func TestMemoryGetSetInvalidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := NewMemory[sample](time.Hour)
	t.Cleanup(func() { _ = c.Close() })

	if _, ok, _ := c.Get(ctx, "2025-03-01"); ok {
		t.Fatal("Get() on empty cache reported a hit")
	}

	want := sample{Score: 81, Level: "excellent"}
	_ = c.Set(ctx, "2025-03-01", want)
	got, ok, err := c.Get(ctx, "2025-03-01")
	if err != nil || !ok || got != want {
		t.Fatalf("Get() = %+v, %v, %v; want %+v, true, nil", got, ok, err, want)
	}

	for range 2 {
		if err := c.Invalidate(ctx); err != nil {
			t.Fatalf("Invalidate() error = %v", err)
		}
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Invalidate = %d", c.Len())
	}
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := NewMemory[sample](time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	_ = c.Set(ctx, "k", sample{Score: 50})

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expired entry returned")
	}
	c.cleanup()
	if c.Len() != 0 {
		t.Errorf("cleanup left %d entries", c.Len())
	}
}

func TestMemoryCloseTwice(t *testing.T) {
	t.Parallel()

	c := NewMemory[sample](time.Minute)
	for range 2 {
		if err := c.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}
}

// TestRedis needs a live server: PULSE_TEST_REDIS_URL=redis://localhost:6379/0
func TestRedis(t *testing.T) {
	url := os.Getenv("PULSE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PULSE_TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatal(err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	c := NewRedis[sample](client, "pulse:test:"+t.Name(), time.Minute)
	t.Cleanup(func() { _ = c.Invalidate(ctx) })

	want := sample{Score: 64, Level: "moderate"}
	if err := c.Set(ctx, "2025-03-01", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := c.Get(ctx, "2025-03-01")
	if err != nil || !ok || got != want {
		t.Fatalf("Get() = %+v, %v, %v", got, ok, err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "2025-03-01"); ok {
		t.Error("entry survived Invalidate")
	}
}
