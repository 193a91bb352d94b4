package cache

import (
	"context"
	"time"
)

// NullCache discards everything and always misses. It backs --no-cache runs
// and tests that must exercise the uncached path.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

func (*NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (*NullCache) Delete(ctx context.Context, key string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
