package airdropcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/airdropcache/airdrop"
	gen "github.com/unkn0wn-root/airdropcache/genstore"
	pr "github.com/unkn0wn-root/airdropcache/provider"
)

type memEntry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

// memProvider is an in-memory Provider + MultiGetter + MultiSetter that
// counts round trips.
type memProvider struct {
	mu sync.Mutex
	m  map[string]memEntry

	gets, getManys, sets, setManys, dels int
	lastTTL                              time.Duration

	failGet, failSet, failDel error
	rejectSet                 bool
	setGate                   chan struct{} // non-nil => Set/SetMany block until closed
	closed                    bool
}

var (
	_ pr.Provider    = (*memProvider)(nil)
	_ pr.MultiGetter = (*memProvider)(nil)
	_ pr.MultiSetter = (*memProvider)(nil)
)

func newMemProvider() *memProvider { return &memProvider{m: make(map[string]memEntry)} }

func (p *memProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gets++
	if p.failGet != nil {
		return nil, false, p.failGet
	}
	return p.lookup(key)
}

func (p *memProvider) lookup(key string) ([]byte, bool, error) {
	e, ok := p.m[key]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		delete(p.m, key)
		return nil, false, nil
	}
	return e.v, true, nil
}

func (p *memProvider) GetMany(_ context.Context, keys []string) (map[string][]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.getManys++
	if p.failGet != nil {
		return nil, p.failGet
	}
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok, _ := p.lookup(k); ok {
			out[k] = v
		}
	}
	return out, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	p.waitGate()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sets++
	p.lastTTL = ttl
	if p.failSet != nil {
		return false, p.failSet
	}
	if p.rejectSet {
		return false, nil
	}
	p.put(key, value, ttl)
	return true, nil
}

func (p *memProvider) SetMany(_ context.Context, items map[string][]byte, ttl time.Duration) error {
	p.waitGate()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setManys++
	p.lastTTL = ttl
	if p.failSet != nil {
		return p.failSet
	}
	for k, v := range items {
		p.put(k, v, ttl)
	}
	return nil
}

func (p *memProvider) waitGate() {
	p.mu.Lock()
	g := p.setGate
	p.mu.Unlock()
	if g != nil {
		<-g
	}
}

func (p *memProvider) put(key string, value []byte, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	p.m[key] = memEntry{v: append([]byte(nil), value...), exp: exp}
}

func (p *memProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dels++
	if p.failDel != nil {
		return p.failDel
	}
	delete(p.m, key)
	return nil
}

func (p *memProvider) Close(_ context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

func (p *memProvider) raw(key string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.m[key]
	return e.v, ok
}

func (p *memProvider) poke(key string, v []byte) {
	p.mu.Lock()
	p.m[key] = memEntry{v: v}
	p.mu.Unlock()
}

func (p *memProvider) roundTrips() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gets + p.getManys + p.sets + p.setManys + p.dels
}

func (p *memProvider) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.m)
}

// failingGenStore fails every call with err.
type failingGenStore struct{ err error }

var _ gen.GenStore = failingGenStore{}

func (f failingGenStore) Snapshot(context.Context, string) (uint64, error) { return 0, f.err }
func (f failingGenStore) SnapshotMany(context.Context, []string) (map[string]uint64, error) {
	return nil, f.err
}
func (f failingGenStore) Bump(context.Context, string) (uint64, error) { return 0, f.err }
func (f failingGenStore) Cleanup(time.Duration)                        {}
func (f failingGenStore) Close(context.Context) error                  { return nil }

// recHooks records the events tests assert on.
type recHooks struct {
	NopHooks
	mu          sync.Mutex
	hits        int
	misses      int
	heals       []string
	cacheErrs   []string
	dropped     int
	rejected    int
	snapshotErr int
	outages     int
}

func (h *recHooks) Lookup(_ string, hits, misses int) {
	h.mu.Lock()
	h.hits += hits
	h.misses += misses
	h.mu.Unlock()
}

func (h *recHooks) SelfHeal(_, reason string) {
	h.mu.Lock()
	h.heals = append(h.heals, reason)
	h.mu.Unlock()
}

func (h *recHooks) CacheError(op string, _ error) {
	h.mu.Lock()
	h.cacheErrs = append(h.cacheErrs, op)
	h.mu.Unlock()
}

func (h *recHooks) PopulateDropped(n int) {
	h.mu.Lock()
	h.dropped += n
	h.mu.Unlock()
}

func (h *recHooks) ProviderSetRejected(string) {
	h.mu.Lock()
	h.rejected++
	h.mu.Unlock()
}

func (h *recHooks) GenSnapshotError(int, error) {
	h.mu.Lock()
	h.snapshotErr++
	h.mu.Unlock()
}

func (h *recHooks) ClearOutage(string, error, error) {
	h.mu.Lock()
	h.outages++
	h.mu.Unlock()
}

// fakeRegistry is an in-memory RegistrySource keyed by lowercased address.
type fakeRegistry struct {
	mu    sync.Mutex
	ids   map[string]uint64
	calls int
	seen  []string
	err   error
}

func newFakeRegistry(entries map[string]uint64) *fakeRegistry {
	ids := make(map[string]uint64, len(entries))
	for k, v := range entries {
		ids[strings.ToLower(k)] = v
	}
	return &fakeRegistry{ids: ids}
}

func (f *fakeRegistry) FindRegistryByAddress(_ context.Context, address string) (airdrop.Registration, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.seen = append(f.seen, address)
	if f.err != nil {
		return airdrop.Registration{}, false, f.err
	}
	id, ok := f.ids[strings.ToLower(address)]
	if !ok {
		return airdrop.Registration{}, false, nil
	}
	return airdrop.Registration{ContractAddress: address, ID: id}, true, nil
}

func (f *fakeRegistry) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type ledgerKey struct {
	airdropID uint64
	address   string // lowercased
}

// fakeLedger returns pre-summed rows, spelled as stored.
type fakeLedger struct {
	mu    sync.Mutex
	rows  map[ledgerKey]airdrop.LedgerRow
	calls int
	asked [][]string
	err   error
}

func newFakeLedger(rows ...airdrop.LedgerRow) *fakeLedger {
	f := &fakeLedger{rows: make(map[ledgerKey]airdrop.LedgerRow)}
	for _, r := range rows {
		f.rows[ledgerKey{r.AirdropID, strings.ToLower(r.UserAddress)}] = r
	}
	return f
}

func (f *fakeLedger) FindLedgerRowsByAddresses(_ context.Context, airdropID uint64, addresses []string) ([]airdrop.LedgerRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.asked = append(f.asked, append([]string(nil), addresses...))
	if f.err != nil {
		return nil, f.err
	}
	var out []airdrop.LedgerRow
	for _, a := range addresses {
		if r, ok := f.rows[ledgerKey{airdropID, strings.ToLower(a)}]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLedger) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeLedger) lastAsked() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.asked) == 0 {
		return nil
	}
	return f.asked[len(f.asked)-1]
}

// addr returns a valid 20-byte hex address.
func addr(n int) string { return fmt.Sprintf("0x%040x", n) }

func newTestStore(t *testing.T, mp pr.Provider, mut func(*StoreOptions)) *Store {
	t.Helper()
	opts := StoreOptions{Provider: mp}
	if mut != nil {
		mut(&opts)
	}
	s, err := NewStore(opts)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

var errBoom = errors.New("boom")
