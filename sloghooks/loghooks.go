package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/airdropcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery   uint64
	CacheErrorEvery uint64
	// LogLookups logs every lookup at debug level. Off by default.
	LogLookups bool
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr   atomic.Uint64
	cacheErrorCtr atomic.Uint64
}

var _ airdropcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Lookup(name string, hits, misses int) {
	if h.l == nil || !h.opts.LogLookups {
		return
	}
	h.l.Debug("airdropcache.lookup",
		"entry", name,
		"hits", hits,
		"misses", misses)
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("airdropcache.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) CacheError(op string, err error) {
	if h.l == nil || !sample(h.opts.CacheErrorEvery, &h.cacheErrorCtr) {
		return
	}
	h.l.Warn("airdropcache.cache_error",
		"op", op,
		"err", err)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("airdropcache.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) PopulateDropped(entries int) {
	if h.l == nil {
		return
	}
	h.l.Warn("airdropcache.populate_dropped",
		"entries", entries)
}

func (h *Hooks) GenSnapshotError(count int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("airdropcache.gen_snapshot_error",
		"count", count,
		"err", err)
}

func (h *Hooks) GenBumpError(storageKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("airdropcache.gen_bump_error",
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) ClearOutage(key string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("airdropcache.clear_outage",
		"key", h.redact(key),
		"bump_err", bumpErr,
		"del_err", delErr)
}
