// Package provider defines the byte store airdropcache sits on.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the []byte previously passed to Set for a key (no metadata, no re-encoding,
// no mutation). Stores that compress internally must fully reverse it.
//
// Keys written by airdropcache carry the configured prefix. Foreign writes
// under that prefix fail frame validation and are deleted on read.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. May ignore cost if unsupported.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// MultiGetter is implemented by providers that can read many keys in one
// round trip. The result holds only the keys that were found.
type MultiGetter interface {
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)
}

// MultiSetter is implemented by providers that can write many keys, all with
// the same TTL, in one round trip.
type MultiSetter interface {
	SetMany(ctx context.Context, items map[string][]byte, ttl time.Duration) error
}

// GetMany reads keys through p, using one round trip when p supports it and
// falling back to sequential Gets otherwise.
func GetMany(ctx context.Context, p Provider, keys []string) (map[string][]byte, error) {
	if mg, ok := p.(MultiGetter); ok {
		return mg.GetMany(ctx, keys)
	}
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		b, ok, err := p.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = b
		}
	}
	return out, nil
}
