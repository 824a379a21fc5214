package airdropcache

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/airdropcache/airdrop"
)

// Resolver is the entry point used by request handlers: registry id
// resolution plus per-user balances, both cache-aside over one Store.
type Resolver struct {
	store    *Store
	registry *Registry
	balances *Balances
}

// New builds a Resolver. opts.Store, opts.RegistrySource and
// opts.LedgerSource are required.
func New(opts Options) (*Resolver, error) {
	reg, err := NewRegistry(opts)
	if err != nil {
		return nil, err
	}
	bal, err := NewBalances(opts)
	if err != nil {
		return nil, err
	}
	return &Resolver{store: opts.Store, registry: reg, balances: bal}, nil
}

// ResolveRegistryID maps a contract address to its internal airdrop id.
// 0 means "not registered" and is cached like any other answer.
func (r *Resolver) ResolveRegistryID(ctx context.Context, contract string) (uint64, error) {
	return r.registry.Resolve(ctx, contract)
}

// GetBalances returns allocation, usage and balance for every address the
// ledger knows, keyed by the caller's spelling.
func (r *Resolver) GetBalances(ctx context.Context, chainID, airdropID uint64, addresses []string) (map[string]airdrop.BalanceView, error) {
	return r.balances.Get(ctx, chainID, airdropID, addresses)
}

// BalancesForContract resolves contract first and then reads balances for
// its airdrop. An unregistered contract yields ErrNotRegistered.
func (r *Resolver) BalancesForContract(ctx context.Context, chainID uint64, contract string, addresses []string) (map[string]airdrop.BalanceView, error) {
	if err := checkID("chain id", chainID); err != nil {
		return nil, err
	}
	id, err := r.registry.Resolve(ctx, contract)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, contract)
	}
	return r.balances.Get(ctx, chainID, id, addresses)
}

// InvalidateRegistry drops the cached id of contract.
func (r *Resolver) InvalidateRegistry(ctx context.Context, contract string) error {
	return r.registry.Clear(ctx, contract)
}

// InvalidateBalances drops the cached ledger rows of addresses.
func (r *Resolver) InvalidateBalances(ctx context.Context, chainID, airdropID uint64, addresses []string) error {
	return r.balances.Clear(ctx, chainID, airdropID, addresses)
}

// Close waits for pending cache writes and releases the store.
func (r *Resolver) Close(ctx context.Context) error {
	return r.store.Close(ctx)
}
