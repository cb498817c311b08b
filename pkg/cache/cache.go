// Package cache stores JSON-encoded values with a TTL, backed by Redis or by
// process memory when no Redis address is configured.
package cache

import (
	"context"
	"time"
)

// Cache is a JSON value cache.
type Cache interface {
	// Get decodes the value stored at key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
