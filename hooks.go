package airdropcache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking: they run on the request
// path and inside populate goroutines. Wrap slow sinks with hooks/async.
type Hooks interface {
	// Lookup reports the outcome of one cache read.
	// name is the entry label ("registry", "ledger", ...).
	Lookup(name string, hits, misses int)

	// An entry was deleted on read instead of being served.
	// reason ∈ {"corrupt", "kind_mismatch", "gen_mismatch", "value_decode"}
	SelfHeal(storageKey, reason string)

	// The cache backend failed; the call carried on as a miss or a skipped
	// write. op ∈ {"get", "get_many", "set", "set_many", "del"}
	CacheError(op string, err error)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// A populate was dropped because too many were already in flight.
	PopulateDropped(entries int)

	// GenStore errors (snapshot or bump).
	GenSnapshotError(count int, err error)
	GenBumpError(storageKey string, err error)

	// Both gen bump and delete failed during Clear (likely backend outage).
	ClearOutage(storageKey string, bumpErr, delErr error)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) Lookup(string, int, int)          {}
func (NopHooks) SelfHeal(string, string)          {}
func (NopHooks) CacheError(string, error)         {}
func (NopHooks) ProviderSetRejected(string)       {}
func (NopHooks) PopulateDropped(int)              {}
func (NopHooks) GenSnapshotError(int, error)      {}
func (NopHooks) GenBumpError(string, error)       {}
func (NopHooks) ClearOutage(string, error, error) {}
