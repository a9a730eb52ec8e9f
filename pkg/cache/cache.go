// Package cache provides pluggable byte caches used to store PyPI API
// responses between crawler runs.
//
// Three backends are available:
//   - FileCache: entries on disk under ~/.cache/pystyle/ (the default)
//   - RedisCache: entries in a shared redis instance, for multi-host crawls
//   - NullCache: caching disabled
//
// All backends provide the same Get/Set/Delete contract and are safe for
// concurrent use by the crawl worker pool.
package cache

import (
	"context"
	"time"
)

// TTLProject is how long PyPI project metadata is cached.
// Project pages change rarely; a day keeps repeated crawls cheap.
const TTLProject = 24 * time.Hour

// TTLRecord is how long commit-pinned style records are cached.
// A record for a fixed commit never changes, so the TTL only bounds
// disk usage.
const TTLRecord = 30 * 24 * time.Hour

// Cache stores opaque byte values under string keys with a TTL.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found
	// and fresh; a miss is (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires;
	// a negative ttl stores the entry already expired, so the next
	// Get reports a miss.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}
