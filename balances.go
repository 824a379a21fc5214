package airdropcache

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/airdropcache/airdrop"
	"github.com/unkn0wn-root/airdropcache/codec"
	"github.com/unkn0wn-root/airdropcache/keys"
)

// Balances answers allocation / usage / balance questions for many users of
// one airdrop. Raw ledger rows are cached per user (5 minutes by default)
// under keys sharing the {chain_airdrop} hash tag; views are recomputed from
// them on every call.
type Balances struct {
	store    *Store
	src      LedgerSource
	prefix   string
	ttl      time.Duration
	codec    codec.Codec[airdrop.LedgerRow]
	validate func(string) bool
}

// NewBalances needs opts.Store and opts.LedgerSource.
func NewBalances(opts Options) (*Balances, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("airdropcache: store is required")
	}
	if opts.LedgerSource == nil {
		return nil, fmt.Errorf("airdropcache: ledger source is required")
	}
	opts = opts.withDefaults()
	if !keys.ValidPrefix(opts.KeyPrefix) {
		return nil, fmt.Errorf("airdropcache: key prefix %q must not contain braces", opts.KeyPrefix)
	}
	return &Balances{
		store:    opts.Store,
		src:      opts.LedgerSource,
		prefix:   opts.KeyPrefix,
		ttl:      opts.LedgerTTL,
		codec:    opts.LedgerCodec,
		validate: opts.ValidateAddress,
	}, nil
}

// Get returns a view for every address the ledger knows, keyed by the
// caller's spelling. Unknown addresses are omitted.
func (b *Balances) Get(ctx context.Context, chainID, airdropID uint64, addresses []string) (map[string]airdrop.BalanceView, error) {
	batch, err := b.batch(chainID, airdropID, addresses)
	if err != nil {
		return nil, err
	}
	byAddr, err := batch.FetchMany(ctx, addresses)
	if err != nil {
		return nil, err
	}

	ix := keys.NewIndex(addresses)
	rows := make([]airdrop.LedgerRow, 0, len(byAddr))
	for _, n := range ix.Normalized() {
		orig, _ := ix.Original(n)
		if r, ok := byAddr[orig]; ok {
			rows = append(rows, r)
		}
	}
	return airdrop.Aggregate(rows, ix)
}

// Clear drops the cached rows of addresses, e.g. after an allocation or a
// debit was written to the ledger.
func (b *Balances) Clear(ctx context.Context, chainID, airdropID uint64, addresses []string) error {
	batch, err := b.batch(chainID, airdropID, addresses)
	if err != nil {
		return err
	}
	return batch.Clear(ctx, addresses)
}

// Key returns the storage key used for one user of an airdrop.
func (b *Balances) Key(chainID, airdropID uint64, address string) string {
	return keys.Batch(b.prefix, chainID, airdropID, address)
}

func (b *Balances) batch(chainID, airdropID uint64, addresses []string) (*Batch[airdrop.LedgerRow], error) {
	if err := checkID("chain id", chainID); err != nil {
		return nil, err
	}
	if err := checkID("airdrop id", airdropID); err != nil {
		return nil, err
	}
	if err := checkAddresses("addresses", addresses, b.validate); err != nil {
		return nil, err
	}
	return NewBatch[airdrop.LedgerRow](b.store, EntryConfig[airdrop.LedgerRow]{
		Name:  "ledger",
		Codec: b.codec,
		Kind:  KindRecord,
	}, &ledgerLookup{b: b, chainID: chainID, airdropID: airdropID})
}

type ledgerLookup struct {
	b         *Balances
	chainID   uint64
	airdropID uint64
}

func (l *ledgerLookup) DeriveKey(normalized string) string {
	return l.b.Key(l.chainID, l.airdropID, normalized)
}

func (l *ledgerLookup) Expiry() time.Duration { return l.b.ttl }

func (l *ledgerLookup) FetchManyFromSource(ctx context.Context, ids []string) (map[string]airdrop.LedgerRow, error) {
	rows, err := l.b.src.FindLedgerRowsByAddresses(ctx, l.airdropID, ids)
	if err != nil {
		return nil, &SourceError{Op: "find ledger rows by addresses", Err: err}
	}
	out := make(map[string]airdrop.LedgerRow, len(rows))
	for _, r := range rows {
		out[r.UserAddress] = r
	}
	return out, nil
}
