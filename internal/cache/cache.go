// Package cache holds derived readiness results between evaluations.
package cache

import (
	"context"
	"time"
)

const DefaultTTL = 6 * time.Hour

// Invalidator drops every cached entry. Invalidate is synchronous and
// idempotent.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Cache[T any] interface {
	Invalidator
	Get(ctx context.Context, key string) (T, bool, error)
	Set(ctx context.Context, key string, value T) error
}
