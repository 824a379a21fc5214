// Package airdrop holds the records exchanged with the source stores and
// the pure balance computation run over them.
package airdrop

// Registration links an external contract address to the internal airdrop id.
// ID 0 is reserved and means "not registered"; real ids start at 1.
type Registration struct {
	ContractAddress string `json:"contract_address" msgpack:"contract_address" cbor:"contract_address"`
	ID              uint64 `json:"id" msgpack:"id" cbor:"id"`
}

// Registered reports whether the registration carries a real id.
func (r Registration) Registered() bool { return r.ID != 0 }

// LedgerRow is the source-side sum of every allocation entry for one
// (airdrop, user) pair. Amounts are base-10 atomic token units and may not
// fit in 64 bits, so they travel as strings.
type LedgerRow struct {
	UserAddress    string `json:"user_address" msgpack:"user_address" cbor:"user_address"`
	AirdropID      uint64 `json:"airdrop_id" msgpack:"airdrop_id" cbor:"airdrop_id"`
	TotalAllocated string `json:"total_allocated" msgpack:"total_allocated" cbor:"total_allocated"`
	TotalUsed      string `json:"total_used" msgpack:"total_used" cbor:"total_used"`
}

// BalanceView is what callers receive per address.
// BalanceAirdropAmount always equals TotalAirdropAmount - TotalAirdropUsedAmount.
type BalanceView struct {
	UserAddress            string `json:"userAddress"`
	TotalAirdropAmount     string `json:"totalAirdropAmount"`
	TotalAirdropUsedAmount string `json:"totalAirdropUsedAmount"`
	BalanceAirdropAmount   string `json:"balanceAirdropAmount"`
}
