package airdropcache

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented is returned when an entry type does not supply one of
	// its hooks (nil source, empty derived key, unimplemented fetch).
	ErrNotImplemented = errors.New("airdropcache: not implemented")

	// ErrNotRegistered is returned by BalancesForContract when the contract
	// resolves to the reserved id 0.
	ErrNotRegistered = errors.New("airdropcache: contract not registered")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("airdropcache: invalid input")

	// ErrSource is matched by every *SourceError.
	ErrSource = errors.New("airdropcache: source query failed")
)

// ValidationError rejects input before any I/O happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("airdropcache: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// SourceError wraps a failure of the authoritative store. It is never cached
// and is distinct from a legitimate "not found" or empty result.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("airdropcache: source %s: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func (e *SourceError) Is(target error) bool { return target == ErrSource }

// ClearError reports a failed delete during Clear. BumpErr is set as well
// when the generation bump failed too, which means a racing populate may
// still land until the entry expires.
type ClearError struct {
	Key     string
	BumpErr error
	DelErr  error
}

func (e *ClearError) Error() string {
	if e.BumpErr != nil {
		return fmt.Sprintf("airdropcache: clear %q: gen bump and delete failed: bump=%v; delete=%v",
			e.Key, e.BumpErr, e.DelErr)
	}
	return fmt.Sprintf("airdropcache: clear %q: delete failed: %v", e.Key, e.DelErr)
}

func (e *ClearError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}
