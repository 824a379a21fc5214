package airdropcache

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/airdropcache/codec"
)

// Cacheable is implemented by every single-key entry type.
type Cacheable[V any] interface {
	// DeriveKey returns the full storage key; "" means not implemented.
	DeriveKey() string
	// Expiry is the TTL applied when the entry is populated; <= 0 means not
	// implemented. Entries never live forever.
	Expiry() time.Duration
	// FetchFromSource reads the authoritative value on a miss.
	FetchFromSource(ctx context.Context) (V, error)
}

// UnimplementedCacheable can be embedded to satisfy Cacheable while only some
// hooks exist; every missing hook surfaces as ErrNotImplemented.
type UnimplementedCacheable[V any] struct{}

func (UnimplementedCacheable[V]) DeriveKey() string     { return "" }
func (UnimplementedCacheable[V]) Expiry() time.Duration { return 0 }
func (UnimplementedCacheable[V]) FetchFromSource(context.Context) (V, error) {
	var zero V
	return zero, ErrNotImplemented
}

// EntryConfig describes how an entry type is stored.
type EntryConfig[V any] struct {
	Name  string         // label for hooks and logs
	Codec codec.Codec[V] // required
	Kind  EntryKind      // 0 => KindRecord
}

func (c EntryConfig[V]) check(s *Store) (EntryConfig[V], error) {
	if s == nil {
		return c, fmt.Errorf("airdropcache: store is required")
	}
	if c.Codec == nil {
		return c, fmt.Errorf("airdropcache: codec is required")
	}
	c.Kind = coalesce(c.Kind, KindRecord)
	c.Name = coalesce(c.Name, "entry")
	return c, nil
}

// Single is the cache-aside primitive for one logical value per key.
type Single[V any] struct {
	store *Store
	cfg   EntryConfig[V]
	src   Cacheable[V]
}

func NewSingle[V any](s *Store, cfg EntryConfig[V], src Cacheable[V]) (*Single[V], error) {
	if src == nil {
		return nil, fmt.Errorf("airdropcache: single entry source: %w", ErrNotImplemented)
	}
	cfg, err := cfg.check(s)
	if err != nil {
		return nil, err
	}
	return &Single[V]{store: s, cfg: cfg, src: src}, nil
}

// Fetch returns the cached value or, on a miss, the source value. A source
// error is returned untouched and nothing is cached. A fresh value is written
// back in the background; the caller never waits for it and never sees its
// failure.
func (c *Single[V]) Fetch(ctx context.Context) (V, error) {
	var zero V
	key := c.src.DeriveKey()
	if key == "" {
		return zero, fmt.Errorf("airdropcache: %s key: %w", c.cfg.Name, ErrNotImplemented)
	}
	ttl := c.src.Expiry()
	if ttl <= 0 {
		return zero, fmt.Errorf("airdropcache: %s expiry: %w", c.cfg.Name, ErrNotImplemented)
	}

	s := c.store
	var obs uint64
	cacheOK := false
	if s.enabled {
		obs, cacheOK = s.snapshot(ctx, key)
	}
	if cacheOK {
		if payload, ok := s.read(ctx, c.cfg.Kind, key, obs); ok {
			v, err := c.cfg.Codec.Decode(payload)
			if err == nil {
				s.hooks.Lookup(c.cfg.Name, 1, 0)
				return v, nil
			}
			s.selfHeal(ctx, key, "value_decode")
		}
	}
	s.hooks.Lookup(c.cfg.Name, 0, 1)

	v, err := c.src.FetchFromSource(ctx)
	if err != nil {
		return zero, err
	}

	if cacheOK {
		payload, err := c.cfg.Codec.Encode(v)
		if err != nil {
			s.log.Error("encode for populate failed", Fields{"key": key, "entry": c.cfg.Name, "err": err})
			return v, nil
		}
		s.populate(ctx, c.cfg.Kind, ttl,
			map[string][]byte{key: payload},
			map[string]uint64{key: obs})
	}
	return v, nil
}

// Clear deletes the entry. Backend errors are returned.
func (c *Single[V]) Clear(ctx context.Context) error {
	key := c.src.DeriveKey()
	if key == "" {
		return fmt.Errorf("airdropcache: %s key: %w", c.cfg.Name, ErrNotImplemented)
	}
	return c.store.clear(ctx, key)
}
