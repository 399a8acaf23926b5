// Package ristretto implements the cache port with an in-process
// dgraph-io/ristretto cache. It holds idempotency replays on its own, or
// serves as the L1 in front of NATS KV.
package ristretto

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// avgEntryBytes is the expected size of a stored API response.
const avgEntryBytes = 512

// Cache is a size-bounded in-memory cache. Cost is counted in bytes of key
// plus value.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a cache holding at most maxCostBytes.
func New(maxCostBytes int64) (*Cache, error) {
	if maxCostBytes <= 0 {
		return nil, fmt.Errorf("ristretto: max cost must be positive, got %d", maxCostBytes)
	}
	counters := max(10*maxCostBytes/avgEntryBytes, 1000)

	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        counters,
		MaxCost:            maxCostBytes,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return &Cache{c: c}, nil
}

func (c *Cache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	data, ok = c.c.Get(key)
	return data, ok, nil
}

// Set stores value for ttl and waits until it is visible to Get. An entry
// the admission policy drops is simply a later miss.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.c.SetWithTTL(key, value, int64(len(key)+len(value)), ttl)
	c.c.Wait()
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

// Close stops the cache's background goroutines.
func (c *Cache) Close() {
	c.c.Close()
}
