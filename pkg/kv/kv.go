// Package kv defines the persistence boundary for layout state and cached
// artifacts: a scoped key-value store exposing get, set, and remove by
// string key. The engine is agnostic to the backing store; backends exist
// for memory (tests, development), files (CLI), and redis (server
// deployments).
package kv

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("store closed")

// Store is the scoped key-value boundary. Implementations must treat an
// absent key as (nil, false, nil), not an error: callers degrade missing
// state to computed defaults and only treat I/O failures as errors.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
