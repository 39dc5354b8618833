// Package cache defines the port for caching derived documents, used by
// the statistics service to avoid rebuilding reports on every request.
package cache

import (
	"context"
	"time"
)

// Cache is a best-effort byte cache. A miss or a dropped Set is never an
// error for callers, only a rebuild.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
