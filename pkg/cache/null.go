package cache

import (
	"context"
	"time"
)

// NullCache discards writes and misses every read. It backs --no-cache
// runs and the "none" backend, and stands in wherever a nil Cache would
// otherwise need guarding.
type NullCache struct{}

// NewNullCache returns the no-op cache.
func NewNullCache() Cache {
	return NullCache{}
}

// Get misses.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the data.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (NullCache) Delete(context.Context, string) error { return nil }

// Close does nothing.
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
