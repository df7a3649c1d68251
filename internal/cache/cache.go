// Package cache stores executed query results keyed by the plan's
// normalized query hash. Because the hash covers the SQL text only,
// formatting edits to a dashboard reuse cached rows while real query
// changes miss.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/peterhq/peter/pkg/compile"
)

// Cache is the byte-level storage boundary.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// GetRows looks up cached rows for a query hash. On a hit the returned
// rows are marked as served from cache.
func GetRows(ctx context.Context, c Cache, hash string) (*compile.Rows, bool, error) {
	data, ok, err := c.Get(ctx, hash)
	if err != nil || !ok {
		return nil, false, err
	}

	var rows compile.Rows
	if err := json.Unmarshal(data, &rows); err != nil {
		// Corrupt entry, drop it and report a miss.
		_ = c.Delete(ctx, hash)
		return nil, false, nil
	}
	rows.Meta.CacheHit = true
	return &rows, true, nil
}

// SetRows caches executed rows under a query hash. Errored results are
// never cached.
func SetRows(ctx context.Context, c Cache, hash string, rows *compile.Rows, ttl time.Duration) error {
	if rows == nil || rows.Err != "" {
		return nil
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.Set(ctx, hash, data, ttl)
}
