// Package metadata implements a small durable key/value table used for
// client-side sync state, e.g. the per-user remote pull cursor.
package metadata

import (
	"context"
)

// Repository is a durable key/value store scoped to the local client.
type Repository interface {
	// Get returns the value for key, or nil if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key; missing keys are tolerated.
	Delete(ctx context.Context, key string) error

	// List returns all stored pairs.
	List(ctx context.Context) (map[string][]byte, error)

	// Clear removes every key. Explicit cache-clear only.
	Clear(ctx context.Context) error
}
