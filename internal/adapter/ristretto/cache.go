// Package ristretto implements the cache port using dgraph-io/ristretto as
// the in-process cache for derived report documents.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// numCounters sizes ristretto's admission frequency sketch. The report
// cache holds a handful of large values (one per report period), so a
// small fixed sketch is plenty.
const numCounters = 1 << 10

// Cache adapts a ristretto cache to the cache port. Values are opaque
// byte slices; cost is their length.
type Cache struct {
	inner *ristretto.Cache[string, []byte]
}

// New creates a cache bounded to maxCostBytes of stored value bytes.
func New(maxCostBytes int64) (*Cache, error) {
	inner, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: numCounters,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

func (c *Cache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	val, found := c.inner.Get(key)
	if !found {
		return nil, false, nil
	}
	return val, true, nil
}

// Set stores a value with the given TTL. Ristretto admits asynchronously;
// Wait makes the write visible before returning, which matters here
// because a report is built at most once per TTL and should not be
// rebuilt just because the previous Set was still in flight.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.inner.SetWithTTL(key, value, int64(len(value)), ttl)
	c.inner.Wait()
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.inner.Del(key)
	return nil
}

// Close releases the cache's internal goroutines.
func (c *Cache) Close() {
	c.inner.Close()
}
