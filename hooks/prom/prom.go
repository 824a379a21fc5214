// Package promhooks exports cache events as Prometheus counters.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/airdropcache"
)

type Hooks struct {
	lookups         *prometheus.CounterVec // entry, result
	selfHeals       *prometheus.CounterVec // reason
	cacheErrors     *prometheus.CounterVec // op
	genErrors       *prometheus.CounterVec // op
	setRejected     prometheus.Counter
	populateDropped prometheus.Counter
	clearOutages    prometheus.Counter
}

var _ airdropcache.Hooks = (*Hooks)(nil)

// New creates the counters under namespace ("" => "airdropcache") and
// registers them with reg (nil => prometheus.DefaultRegisterer).
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "airdropcache"
	}
	h := &Hooks{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Cache lookups per entry type and result (hit or miss).",
		}, []string{"entry", "result"}),
		selfHeals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "self_heals_total",
			Help:      "Cache entries deleted on read instead of served.",
		}, []string{"reason"}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Cache backend errors by operation.",
		}, []string{"op"}),
		genErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gen_errors_total",
			Help:      "Generation store errors by operation.",
		}, []string{"op"}),
		setRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_set_rejected_total",
			Help:      "Writes refused by the cache backend.",
		}),
		populateDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "populate_dropped_entries_total",
			Help:      "Entries not written back because too many populates were in flight.",
		}),
		clearOutages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clear_outages_total",
			Help:      "Clears where both the generation bump and the delete failed.",
		}),
	}
	for _, c := range []prometheus.Collector{
		h.lookups, h.selfHeals, h.cacheErrors, h.genErrors,
		h.setRejected, h.populateDropped, h.clearOutages,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) Lookup(name string, hits, misses int) {
	if hits > 0 {
		h.lookups.WithLabelValues(name, "hit").Add(float64(hits))
	}
	if misses > 0 {
		h.lookups.WithLabelValues(name, "miss").Add(float64(misses))
	}
}

func (h *Hooks) SelfHeal(_ string, reason string) { h.selfHeals.WithLabelValues(reason).Inc() }
func (h *Hooks) CacheError(op string, _ error)    { h.cacheErrors.WithLabelValues(op).Inc() }
func (h *Hooks) ProviderSetRejected(string)       { h.setRejected.Inc() }
func (h *Hooks) PopulateDropped(entries int)      { h.populateDropped.Add(float64(entries)) }
func (h *Hooks) GenSnapshotError(int, error)      { h.genErrors.WithLabelValues("snapshot").Inc() }
func (h *Hooks) GenBumpError(string, error)       { h.genErrors.WithLabelValues("bump").Inc() }
func (h *Hooks) ClearOutage(string, error, error) { h.clearOutages.Inc() }
