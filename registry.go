package airdropcache

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/airdropcache/codec"
	"github.com/unkn0wn-root/airdropcache/keys"
)

const registryKind = "airdrop"

// Registry resolves contract addresses to internal airdrop ids.
//
// Unregistered contracts resolve to 0 and that answer is cached for the full
// TTL like any other, so addresses that never get registered cost one source
// query per TTL window. The 0 sentinel relies on real ids starting at 1;
// changing it would change what existing cache entries mean.
type Registry struct {
	store    *Store
	src      RegistrySource
	prefix   string
	ttl      time.Duration
	codec    codec.Codec[uint64]
	validate func(string) bool
}

// NewRegistry needs opts.Store and opts.RegistrySource.
func NewRegistry(opts Options) (*Registry, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("airdropcache: store is required")
	}
	if opts.RegistrySource == nil {
		return nil, fmt.Errorf("airdropcache: registry source is required")
	}
	opts = opts.withDefaults()
	if !keys.ValidPrefix(opts.KeyPrefix) {
		return nil, fmt.Errorf("airdropcache: key prefix %q must not contain braces", opts.KeyPrefix)
	}
	return &Registry{
		store:    opts.Store,
		src:      opts.RegistrySource,
		prefix:   opts.KeyPrefix,
		ttl:      opts.RegistryTTL,
		codec:    opts.RegistryCodec,
		validate: opts.ValidateAddress,
	}, nil
}

// Resolve returns the internal id of contract, 0 when it is not registered.
func (r *Registry) Resolve(ctx context.Context, contract string) (uint64, error) {
	e, err := r.entry(contract)
	if err != nil {
		return 0, err
	}
	return e.Fetch(ctx)
}

// Clear drops the cached id of contract, e.g. right after registering it.
func (r *Registry) Clear(ctx context.Context, contract string) error {
	e, err := r.entry(contract)
	if err != nil {
		return err
	}
	return e.Clear(ctx)
}

// Key returns the storage key used for contract.
func (r *Registry) Key(contract string) string {
	return keys.Single(r.prefix, registryKind, contract)
}

func (r *Registry) entry(contract string) (*Single[uint64], error) {
	if err := checkAddress("contract address", contract, r.validate); err != nil {
		return nil, err
	}
	return NewSingle[uint64](r.store, EntryConfig[uint64]{
		Name:  "registry",
		Codec: r.codec,
		Kind:  KindScalar,
	}, &registryLookup{r: r, contract: keys.Normalize(contract)})
}

type registryLookup struct {
	r        *Registry
	contract string // normalized
}

func (l *registryLookup) DeriveKey() string     { return l.r.Key(l.contract) }
func (l *registryLookup) Expiry() time.Duration { return l.r.ttl }

func (l *registryLookup) FetchFromSource(ctx context.Context) (uint64, error) {
	rec, ok, err := l.r.src.FindRegistryByAddress(ctx, l.contract)
	if err != nil {
		return 0, &SourceError{Op: "find registry by address", Err: err}
	}
	if !ok {
		return 0, nil
	}
	return rec.ID, nil
}
