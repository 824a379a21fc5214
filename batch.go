package airdropcache

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/airdropcache/keys"
)

// BatchCacheable is implemented by entry types read many keys at a time.
type BatchCacheable[V any] interface {
	// DeriveKey returns the storage key of one normalized identifier.
	DeriveKey(normalized string) string
	// Expiry is the TTL applied to populated entries; <= 0 means not
	// implemented.
	Expiry() time.Duration
	// FetchManyFromSource reads every identifier in one round trip. The
	// result is keyed by identifier as the source spells it; identifiers the
	// source does not know are simply absent.
	FetchManyFromSource(ctx context.Context, ids []string) (map[string]V, error)
}

// Batch is the cache-aside primitive for N keys per call: one multi-get, at
// most one batched source call for the misses, one detached populate.
//
// There is no per-key partial failure: a source error fails the whole call.
type Batch[V any] struct {
	store *Store
	cfg   EntryConfig[V]
	src   BatchCacheable[V]
}

func NewBatch[V any](s *Store, cfg EntryConfig[V], src BatchCacheable[V]) (*Batch[V], error) {
	if src == nil {
		return nil, fmt.Errorf("airdropcache: batch entry source: %w", ErrNotImplemented)
	}
	cfg, err := cfg.check(s)
	if err != nil {
		return nil, err
	}
	return &Batch[V]{store: s, cfg: cfg, src: src}, nil
}

// FetchMany returns the values for ids keyed by the caller's spelling.
// Identifiers differing only by case share one cache slot and one result
// entry (the first spelling wins). Identifiers unknown to both cache and
// source are omitted.
func (b *Batch[V]) FetchMany(ctx context.Context, ids []string) (map[string]V, error) {
	ix, storageKeys, err := b.plan(ids)
	if err != nil {
		return nil, err
	}
	ttl := b.src.Expiry()
	if ttl <= 0 {
		return nil, fmt.Errorf("airdropcache: %s expiry: %w", b.cfg.Name, ErrNotImplemented)
	}
	norm := ix.Normalized()
	s := b.store
	out := make(map[string]V, len(norm))

	var gens map[string]uint64
	cacheOK := false
	if s.enabled {
		gens, cacheOK = s.snapshotMany(ctx, storageKeys)
	}

	missing := norm
	if cacheOK {
		missing = make([]string, 0, len(norm))
		payloads := s.readMany(ctx, b.cfg.Kind, storageKeys, gens)
		for i, n := range norm {
			sk := storageKeys[i]
			if p, ok := payloads[sk]; ok {
				v, err := b.cfg.Codec.Decode(p)
				if err == nil {
					orig, _ := ix.Original(n)
					out[orig] = v
					continue
				}
				s.selfHeal(ctx, sk, "value_decode")
			}
			missing = append(missing, n)
		}
	}
	s.hooks.Lookup(b.cfg.Name, len(norm)-len(missing), len(missing))
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := b.src.FetchManyFromSource(ctx, ix.Originals(missing))
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(missing))
	for _, n := range missing {
		wanted[n] = struct{}{}
	}
	fresh := make(map[string][]byte, len(fetched))
	for id, v := range fetched {
		n := keys.Normalize(id)
		if _, ok := wanted[n]; !ok {
			// not requested, or already served from cache
			continue
		}
		orig, _ := ix.Original(n)
		out[orig] = v

		if !cacheOK {
			continue
		}
		p, err := b.cfg.Codec.Encode(v)
		if err != nil {
			s.log.Error("encode for populate failed", Fields{"id": id, "entry": b.cfg.Name, "err": err})
			continue
		}
		fresh[b.src.DeriveKey(n)] = p
	}
	if cacheOK {
		s.populate(ctx, b.cfg.Kind, ttl, fresh, gens)
	}
	return out, nil
}

// Clear deletes the cache slots of ids.
func (b *Batch[V]) Clear(ctx context.Context, ids []string) error {
	_, storageKeys, err := b.plan(ids)
	if err != nil {
		return err
	}
	return b.store.clear(ctx, storageKeys...)
}

// plan validates ids and derives one storage key per distinct identifier,
// aligned with ix.Normalized().
func (b *Batch[V]) plan(ids []string) (*keys.Index, []string, error) {
	if len(ids) == 0 {
		return nil, nil, &ValidationError{Field: "identifiers", Reason: "at least one identifier is required"}
	}
	for _, id := range ids {
		if keys.Normalize(id) == "" {
			return nil, nil, &ValidationError{Field: "identifiers", Reason: "empty identifier"}
		}
	}
	ix := keys.NewIndex(ids)
	storageKeys := make([]string, ix.Len())
	for i, n := range ix.Normalized() {
		k := b.src.DeriveKey(n)
		if k == "" {
			return nil, nil, fmt.Errorf("airdropcache: %s key: %w", b.cfg.Name, ErrNotImplemented)
		}
		storageKeys[i] = k
	}
	return ix, storageKeys, nil
}
