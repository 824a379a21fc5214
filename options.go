package airdropcache

import (
	"time"

	"github.com/unkn0wn-root/airdropcache/airdrop"
	"github.com/unkn0wn-root/airdropcache/codec"
	gen "github.com/unkn0wn-root/airdropcache/genstore"
	pr "github.com/unkn0wn-root/airdropcache/provider"
)

// SetCostFunc returns the cost passed to Provider.Set (used by ristretto).
type SetCostFunc func(key string, raw []byte) int64

// StoreOptions configure the shared cache handle.
// Only Provider is required; everything else has a default.
type StoreOptions struct {
	// Required
	Provider pr.Provider

	Logger   Logger       // nil => NopLogger
	Hooks    Hooks        // nil => NopHooks
	GenStore gen.GenStore // nil => LocalGenStore owned (and closed) by the Store
	Disabled bool         // true => every read goes to the source, nothing is written

	CleanupInterval time.Duration // local gens sweep; 0 => 1h
	GenRetention    time.Duration // local gens retention; 0 => 30d

	// PopulateTimeout bounds one detached cache write; 0 => 5s.
	PopulateTimeout time.Duration
	// MaxPendingPopulates caps in-flight detached writes; beyond it writes are
	// dropped (Hooks.PopulateDropped). 0 => 1024.
	MaxPendingPopulates int64
	ComputeSetCost      SetCostFunc // nil => 1 per entry
}

// Options configure a Resolver (and the Registry / Balances it is built from).
type Options struct {
	// Required
	Store          *Store
	RegistrySource RegistrySource // required by New and NewRegistry
	LedgerSource   LedgerSource   // required by New and NewBalances

	// KeyPrefix goes in front of every key; must not contain '{' or '}'.
	// "" => "airdropcache:".
	KeyPrefix   string
	RegistryTTL time.Duration // 0 => 24h
	LedgerTTL   time.Duration // 0 => 5m

	RegistryCodec codec.Codec[uint64]            // nil => codec.Uint64 (decimal string)
	LedgerCodec   codec.Codec[airdrop.LedgerRow] // nil => codec.Msgpack

	// ValidateAddress accepts or rejects an address before any I/O.
	// nil => go-ethereum common.IsHexAddress.
	ValidateAddress func(string) bool
}

func (o Options) withDefaults() Options {
	o.KeyPrefix = coalesce(o.KeyPrefix, defaultKeyPrefix)
	o.RegistryTTL = coalesce(o.RegistryTTL, defaultRegistryTTL)
	o.LedgerTTL = coalesce(o.LedgerTTL, defaultLedgerTTL)
	if o.RegistryCodec == nil {
		o.RegistryCodec = codec.Uint64{}
	}
	if o.LedgerCodec == nil {
		o.LedgerCodec = codec.Msgpack[airdrop.LedgerRow]{}
	}
	if o.ValidateAddress == nil {
		o.ValidateAddress = isHexAddress
	}
	return o
}
