package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	go_json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var _ Cache[int] = (*Redis[int])(nil)

// Redis stores every entry as a field of one hash so that Invalidate is a
// single DEL.
type Redis[T any] struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedis[T any](client *redis.Client, key string, ttl time.Duration) *Redis[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis[T]{client: client, key: key, ttl: ttl}
}

func (c *Redis[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	data, err := c.client.HGet(ctx, c.key, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("failed to read cache: %w", err)
	}

	var v T
	if err := go_json.Unmarshal(data, &v); err != nil {
		return zero, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return v, true, nil
}

func (c *Redis[T]) Set(ctx context.Context, key string, value T) error {
	data, err := go_json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, c.key, key, data)
		pipe.Expire(ctx, c.key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

func (c *Redis[T]) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}
