package airdropcache

import "time"

const (
	defaultKeyPrefix           = "airdropcache:"
	defaultRegistryTTL         = 24 * time.Hour
	defaultLedgerTTL           = 5 * time.Minute
	defaultPopulateTimeout     = 5 * time.Second
	defaultMaxPendingPopulates = 1024
	defaultGenRetention        = 30 * 24 * time.Hour
	defaultSweep               = time.Hour
)

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
