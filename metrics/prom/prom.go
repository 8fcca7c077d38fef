// Package prom exports the cache and resolver metrics to Prometheus.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vans-aj/SwiftCache/cache"
	"github.com/vans-aj/SwiftCache/proxy"
)

// Adapter implements cache.Metrics and proxy.Metrics and exports Prometheus
// counters/gauges/histograms. Safe for concurrent use; all Prometheus metric
// types are goroutine-safe.
type Adapter struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evicts    prometheus.Counter
	sizeEnt   prometheus.Gauge
	sizeBytes prometheus.Gauge

	inflight   prometheus.Gauge
	fetches    *prometheus.CounterVec
	fetchDur   prometheus.Histogram
	resolveDur *prometheus.HistogramVec
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache hits",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "evictions_total",
			Help:        "Entries evicted under capacity pressure",
			ConstLabels: constLabels,
		}),
		sizeEnt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
		sizeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "usage_bytes",
			Help:        "Resident entry bytes",
			ConstLabels: constLabels,
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "inflight_fetches",
			Help:        "Origin fetches currently running",
			ConstLabels: constLabels,
		}),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "origin_fetches_total",
				Help:        "Origin fetches by outcome",
				ConstLabels: constLabels,
			},
			[]string{"outcome"},
		),
		fetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "fetch_duration_seconds",
			Help:        "Origin fetch latency",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}),
		resolveDur: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "resolve_duration_seconds",
				Help:        "Resolve latency by caller role",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"role"},
		),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.sizeEnt, a.sizeBytes,
		a.inflight, a.fetches, a.fetchDur, a.resolveDur)
	return a
}

// ---- cache.Metrics ----

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evicts.Inc() }

// Size updates gauges for resident entries and bytes.
func (a *Adapter) Size(entries int, bytes int64) {
	a.sizeEnt.Set(float64(entries))
	a.sizeBytes.Set(float64(bytes))
}

// ---- proxy.Metrics ----

// Resolved observes one Resolve call with the caller's role.
func (a *Adapter) Resolved(role proxy.Role, d time.Duration) {
	a.resolveDur.WithLabelValues(role.String()).Observe(d.Seconds())
}

// FetchStarted marks an origin fetch as in flight.
func (a *Adapter) FetchStarted() { a.inflight.Inc() }

// FetchFinished records fetch completion, outcome, and latency.
func (a *Adapter) FetchFinished(d time.Duration, err error) {
	a.inflight.Dec()
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	a.fetches.WithLabelValues(outcome).Inc()
	a.fetchDur.Observe(d.Seconds())
}

// Compile-time checks: the adapter serves both metric consumers.
var (
	_ cache.Metrics = (*Adapter)(nil)
	_ proxy.Metrics = (*Adapter)(nil)
)
