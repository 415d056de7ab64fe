// Package cache provides content caching for rendered diagram artifacts.
//
// Three backends are included: a file cache for CLI usage, a Redis cache
// for server deployments, and a null cache that disables caching. Keys
// are SHA-256 content hashes, so a cached artifact is valid for exactly
// the input that produced it and invalidation is never needed.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the expiration applied when callers pass a zero TTL to
// backends that require one.
const DefaultTTL = 24 * time.Hour

// Cache stores and retrieves byte blobs by key.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no
	// expiration for backends that support it.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
