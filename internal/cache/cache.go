package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encodable values by key.
type Cache interface {
	// Get decodes the value stored under key into dest. It reports false
	// when the key is missing or has expired.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores a value in the cache with the given key and TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes a value from the cache by key.
	Delete(ctx context.Context, key string) error
}
