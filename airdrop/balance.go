package airdrop

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/unkn0wn-root/airdropcache/keys"
)

// ErrIntegrity is matched by every *IntegrityError.
var ErrIntegrity = errors.New("airdrop: ledger integrity violation")

// IntegrityError reports a ledger row whose amounts cannot describe a valid
// balance. It is surfaced to the caller, never corrected.
type IntegrityError struct {
	Address string
	Total   string
	Used    string
	Reason  string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("airdrop: ledger integrity violation for %s (total=%q used=%q): %s",
		e.Address, e.Total, e.Used, e.Reason)
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// Aggregate turns summed ledger rows into balance views keyed by the
// caller's spelling of each address. Rows for addresses the index does not
// know are skipped. Amounts are parsed and subtracted as exact decimals.
func Aggregate(rows []LedgerRow, ix *keys.Index) (map[string]BalanceView, error) {
	out := make(map[string]BalanceView, len(rows))
	for _, r := range rows {
		addr, ok := ix.Lookup(r.UserAddress)
		if !ok {
			continue
		}
		v, err := View(addr, r)
		if err != nil {
			return nil, err
		}
		out[addr] = v
	}
	return out, nil
}

// View computes the balance view of a single row, reported under addr.
func View(addr string, r LedgerRow) (BalanceView, error) {
	total, err := parseAmount(r.TotalAllocated)
	if err != nil {
		return BalanceView{}, integrity(addr, r, "total allocated: "+err.Error())
	}
	used, err := parseAmount(r.TotalUsed)
	if err != nil {
		return BalanceView{}, integrity(addr, r, "total used: "+err.Error())
	}
	bal := total.Sub(used)
	if bal.IsNegative() {
		return BalanceView{}, integrity(addr, r, "used exceeds allocated")
	}
	return BalanceView{
		UserAddress:            addr,
		TotalAirdropAmount:     total.String(),
		TotalAirdropUsedAmount: used.String(),
		BalanceAirdropAmount:   bal.String(),
	}, nil
}

// parseAmount accepts plain or exponent notation; an empty amount is zero.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("negative amount")
	}
	return d, nil
}

func integrity(addr string, r LedgerRow, reason string) *IntegrityError {
	return &IntegrityError{Address: addr, Total: r.TotalAllocated, Used: r.TotalUsed, Reason: reason}
}
