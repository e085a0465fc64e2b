package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// The memory implementation serves single-instance deployments; Redis is
// shared between replicas.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Stats reports implementation specific counters.
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Close releases background resources.
	Close() error
}

// CacheError is a constant error value.
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)
