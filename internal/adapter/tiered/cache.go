// Package tiered implements a two-level (L1 + L2) cache adapter.
package tiered

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Strob0t/todolist/internal/port/cache"
)

// Cache combines an in-process L1 with a shared L2.
// Get checks L1 first, then L2, backfilling L1 on an L2 hit. An unreachable
// L2 degrades to L1-only reads: its errors are logged and reported as misses.
type Cache struct {
	l1       cache.Cache
	l2       cache.Cache
	l1Expire time.Duration
}

// New creates a tiered cache. l1Expire bounds how long L2 backfill entries
// live in L1.
func New(l1, l2 cache.Cache, l1Expire time.Duration) *Cache {
	return &Cache{l1: l1, l2: l2, l1Expire: l1Expire}
}

// Get checks L1, then L2.
func (c *Cache) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	val, found, err := c.l1.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("l1 get: %w", err)
	}
	if found {
		return val, true, nil
	}

	val, found, err = c.l2.Get(ctx, key)
	if err != nil {
		slog.Warn("l2 cache get failed", "key", key, "error", err)
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}

	_ = c.l1.Set(ctx, key, val, c.l1Expire)
	return val, true, nil
}

// Set writes to L1, then L2.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, ttl); err != nil {
		return fmt.Errorf("l1 set: %w", err)
	}
	if err := c.l2.Set(ctx, key, value, ttl); err != nil {
		return fmt.Errorf("l2 set: %w", err)
	}
	return nil
}

// Delete removes from both levels.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.l1.Delete(ctx, key); err != nil {
		return fmt.Errorf("l1 delete: %w", err)
	}
	if err := c.l2.Delete(ctx, key); err != nil {
		return fmt.Errorf("l2 delete: %w", err)
	}
	return nil
}
