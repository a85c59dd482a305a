package port

import (
	"context"
	"errors"
	"time"
)

// ErrMiss signals a cache miss in a typed way so callers can tell misses from
// transport errors.
var ErrMiss = errors.New("cache: miss")

// Cache is the minimal key-value contract the application depends on.
// Implementations must be safe for concurrent use. The cache is strictly an
// accelerator: every caller must behave correctly when it is empty or down.
type Cache interface {
	// Get fetches the value for key, returning ErrMiss when absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. Zero or negative TTL means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Ping verifies connectivity with the backend.
	Ping(ctx context.Context) error

	// Close releases resources held by the cache.
	Close() error
}
