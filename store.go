package airdropcache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	gen "github.com/unkn0wn-root/airdropcache/genstore"
	"github.com/unkn0wn-root/airdropcache/internal/wire"
	pr "github.com/unkn0wn-root/airdropcache/provider"
)

// EntryKind tells scalar payloads from structured records in the entry frame.
// Reading a key with the wrong kind is treated as corruption.
type EntryKind byte

const (
	KindScalar = EntryKind(wire.KindScalar)
	KindRecord = EntryKind(wire.KindRecord)
)

// Store is the cache handle shared by every entry type. It owns the provider
// access, generation checks, logging and the detached populate goroutines.
// A Store is safe for concurrent use; it holds no lock across I/O.
type Store struct {
	provider pr.Provider
	gen      gen.GenStore
	ownsGen  bool
	log      Logger
	hooks    Hooks
	enabled  bool

	populateTimeout time.Duration
	computeSetCost  SetCostFunc
	pending         *semaphore.Weighted
	wg              sync.WaitGroup
	closeOnce       sync.Once
}

func NewStore(opts StoreOptions) (*Store, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("airdropcache: provider is required")
	}
	if opts.MaxPendingPopulates < 0 {
		return nil, fmt.Errorf("airdropcache: max pending populates must not be negative")
	}

	s := &Store{
		provider: opts.Provider,
		enabled:  !opts.Disabled,
	}

	// defaults
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.populateTimeout = coalesce(opts.PopulateTimeout, defaultPopulateTimeout)
	s.pending = semaphore.NewWeighted(coalesce(opts.MaxPendingPopulates, defaultMaxPendingPopulates))

	if opts.ComputeSetCost != nil {
		s.computeSetCost = opts.ComputeSetCost
	} else {
		s.computeSetCost = func(string, []byte) int64 { return 1 }
	}

	if opts.GenStore != nil {
		s.gen = opts.GenStore
	} else {
		s.gen = gen.NewLocalGenStore(
			coalesce(opts.CleanupInterval, defaultSweep),
			coalesce(opts.GenRetention, defaultGenRetention),
		)
		s.ownsGen = true
	}
	return s, nil
}

func (s *Store) Enabled() bool { return s.enabled }

// Wait blocks until every detached populate started so far has finished.
func (s *Store) Wait() { s.wg.Wait() }

// Close drains populates, then closes the gen store (when owned) and the
// provider. Calling it more than once only returns the provider's result once.
func (s *Store) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		s.wg.Wait()
		if s.ownsGen {
			_ = s.gen.Close(ctx)
		}
		err = s.provider.Close(ctx)
	})
	return err
}

// snapshot returns the generation of key. ok=false means the gen store is
// unavailable and the cache must be bypassed for this call.
func (s *Store) snapshot(ctx context.Context, key string) (uint64, bool) {
	g, err := s.gen.Snapshot(ctx, key)
	if err != nil {
		s.hooks.GenSnapshotError(1, err)
		s.log.Warn("gen snapshot error; bypassing cache", Fields{"key": key, "err": err})
		return 0, false
	}
	return g, true
}

func (s *Store) snapshotMany(ctx context.Context, keys []string) (map[string]uint64, bool) {
	gens, err := s.gen.SnapshotMany(ctx, keys)
	if err != nil {
		s.hooks.GenSnapshotError(len(keys), err)
		s.log.Warn("gen snapshot error; bypassing cache", Fields{"count": len(keys), "err": err})
		return nil, false
	}
	return gens, true
}

// read returns the payload stored under key if it is a valid frame of the
// given kind written at generation want.
func (s *Store) read(ctx context.Context, kind EntryKind, key string, want uint64) ([]byte, bool) {
	raw, ok, err := s.provider.Get(ctx, key)
	if err != nil {
		s.cacheError("get", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return s.unframe(ctx, kind, key, raw, want)
}

// readMany is read for many keys with one provider round trip when possible.
func (s *Store) readMany(ctx context.Context, kind EntryKind, keys []string, gens map[string]uint64) map[string][]byte {
	raws, err := pr.GetMany(ctx, s.provider, keys)
	if err != nil {
		s.cacheError("get_many", fmt.Sprintf("%d keys", len(keys)), err)
		return nil
	}
	out := make(map[string][]byte, len(raws))
	for k, raw := range raws {
		if p, ok := s.unframe(ctx, kind, k, raw, gens[k]); ok {
			out[k] = p
		}
	}
	return out
}

func (s *Store) unframe(ctx context.Context, kind EntryKind, key string, raw []byte, want uint64) ([]byte, bool) {
	g, payload, err := wire.Decode(byte(kind), raw)
	if err != nil {
		reason := "corrupt"
		if errors.Is(err, wire.ErrKind) {
			reason = "kind_mismatch"
		}
		s.selfHeal(ctx, key, reason)
		return nil, false
	}
	if g != want {
		s.selfHeal(ctx, key, "gen_mismatch")
		return nil, false
	}
	return payload, true
}

func (s *Store) selfHeal(ctx context.Context, key, reason string) {
	s.hooks.SelfHeal(key, reason)
	s.log.Debug("dropping unusable cache entry", Fields{"key": key, "reason": reason})
	if err := s.provider.Del(ctx, key); err != nil {
		s.cacheError("del", key, err)
	}
}

func (s *Store) cacheError(op, key string, err error) {
	s.hooks.CacheError(op, err)
	s.log.Warn("cache backend error", Fields{"op": op, "key": key, "err": err})
}

// populate writes payloads in a detached goroutine and returns immediately.
// Each entry is framed with the generation observed before the source read
// and is skipped if that generation moved in the meantime. Failures are
// logged and reported to hooks only.
func (s *Store) populate(ctx context.Context, kind EntryKind, ttl time.Duration, payloads map[string][]byte, observed map[string]uint64) {
	if !s.enabled || len(payloads) == 0 {
		return
	}
	if !s.pending.TryAcquire(1) {
		s.hooks.PopulateDropped(len(payloads))
		s.log.Warn("populate dropped; too many in flight", Fields{"count": len(payloads)})
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.pending.Release(1)

		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.populateTimeout)
		defer cancel()
		s.write(wctx, kind, ttl, payloads, observed)
	}()
}

func (s *Store) write(ctx context.Context, kind EntryKind, ttl time.Duration, payloads map[string][]byte, observed map[string]uint64) {
	keys := make([]string, 0, len(payloads))
	for k := range payloads {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	current, ok := s.snapshotMany(ctx, keys)
	if !ok {
		return
	}

	frames := make(map[string][]byte, len(keys))
	for _, k := range keys {
		obs := observed[k]
		if current[k] != obs {
			// cleared while we were reading the source
			s.log.Debug("populate skipped (gen mismatch)", Fields{"key": k, "obs": obs, "cur": current[k]})
			continue
		}
		frames[k] = wire.Encode(byte(kind), obs, payloads[k])
	}
	if len(frames) == 0 {
		return
	}

	if ms, ok := s.provider.(pr.MultiSetter); ok && len(frames) > 1 {
		if err := ms.SetMany(ctx, frames, ttl); err != nil {
			s.cacheError("set_many", fmt.Sprintf("%d keys", len(frames)), err)
		}
		return
	}
	for k, f := range frames {
		ok, err := s.provider.Set(ctx, k, f, s.computeSetCost(k, f), ttl)
		if err != nil {
			s.cacheError("set", k, err)
			continue
		}
		if !ok {
			s.hooks.ProviderSetRejected(k)
			s.log.Debug("populate rejected by provider (pressure)", Fields{"key": k})
		}
	}
}

// clear bumps the generation of each key (so in-flight populates are
// discarded) and deletes it. Delete failures are returned; a failed bump on
// its own is only reported.
func (s *Store) clear(ctx context.Context, keys ...string) error {
	if !s.enabled {
		return nil
	}
	var errs []error
	for _, k := range keys {
		_, bumpErr := s.gen.Bump(ctx, k)
		if bumpErr != nil {
			s.hooks.GenBumpError(k, bumpErr)
			s.log.Error("gen bump error", Fields{"key": k, "err": bumpErr})
		}
		delErr := s.provider.Del(ctx, k)
		if delErr == nil {
			continue
		}
		s.hooks.CacheError("del", delErr)
		if bumpErr != nil {
			s.hooks.ClearOutage(k, bumpErr, delErr)
		}
		errs = append(errs, &ClearError{Key: k, BumpErr: bumpErr, DelErr: delErr})
	}
	if len(errs) == 0 {
		s.log.Debug("cleared keys (bumped gen + deleted)", Fields{"count": len(keys)})
	}
	return errors.Join(errs...)
}
