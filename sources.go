package airdropcache

import (
	"context"

	"github.com/unkn0wn-root/airdropcache/airdrop"
)

// RegistrySource is the authoritative registry of airdrop contracts.
// See source/sqlstore and source/mongostore.
type RegistrySource interface {
	// FindRegistryByAddress looks up a lowercased contract address.
	// A missing record is (zero, false, nil), never an error.
	FindRegistryByAddress(ctx context.Context, address string) (airdrop.Registration, bool, error)
}

// LedgerSource is the authoritative allocation ledger.
type LedgerSource interface {
	// FindLedgerRowsByAddresses returns one summed row per known address,
	// matched case-insensitively, in a single round trip.
	FindLedgerRowsByAddresses(ctx context.Context, airdropID uint64, addresses []string) ([]airdrop.LedgerRow, error)
}
