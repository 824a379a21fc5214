package airdropcache

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// isHexAddress accepts 20-byte hex addresses spelled with a 0x prefix. The
// bare form is refused so one address never maps to two cache keys.
func isHexAddress(s string) bool {
	return len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') && common.IsHexAddress(s)
}

func checkAddress(field, addr string, valid func(string) bool) error {
	if addr == "" {
		return &ValidationError{Field: field, Reason: "empty address"}
	}
	if !valid(addr) {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("malformed address %q", addr)}
	}
	return nil
}

func checkAddresses(field string, addrs []string, valid func(string) bool) error {
	if len(addrs) == 0 {
		return &ValidationError{Field: field, Reason: "at least one address is required"}
	}
	for _, a := range addrs {
		if err := checkAddress(field, a, valid); err != nil {
			return err
		}
	}
	return nil
}

func checkID(field string, id uint64) error {
	if id == 0 {
		return &ValidationError{Field: field, Reason: "must be non-zero"}
	}
	return nil
}
