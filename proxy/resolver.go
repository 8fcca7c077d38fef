package proxy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/vans-aj/SwiftCache/cache"
	"github.com/vans-aj/SwiftCache/internal/singleflight"
	"github.com/vans-aj/SwiftCache/internal/util"
	"github.com/vans-aj/SwiftCache/scheduler"
)

// Role reports how a Resolve call obtained its result.
type Role int

const (
	// RoleHit — served straight from the entry store.
	RoleHit Role = iota
	// RoleFetcher — this caller won the in-flight registration and ran the
	// origin fetch.
	RoleFetcher
	// RoleWaited — this caller joined an existing in-flight fetch and
	// received its result.
	RoleWaited
)

func (r Role) String() string {
	switch r {
	case RoleHit:
		return "hit"
	case RoleFetcher:
		return "fetcher"
	case RoleWaited:
		return "waited"
	}
	return "unknown"
}

// Response is the upstream payload handed back by a FetchFunc.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// FetchFunc performs the actual origin retrieval for a URL.
// Implementations must honor ctx; the resolver derives it with the configured
// fetch timeout.
type FetchFunc func(ctx context.Context, url string) (*Response, error)

// Result is the outcome of one Resolve call.
// Cached reports whether the entry resides in the store: false for oversized
// pass-through payloads and uncacheable statuses, which are served but will
// be fetched again next time.
type Result struct {
	Entry   *cache.Entry
	Role    Role
	Cached  bool
	Elapsed time.Duration
}

// flightOutcome is what one fetch episode publishes to every coalesced caller.
type flightOutcome struct {
	entry  *cache.Entry
	cached bool
}

// Options configures a Resolver. Store and Scheduler are required;
// everything else has a usable default.
type Options struct {
	Store     *cache.Store
	Scheduler *scheduler.Scheduler

	// FetchTimeout bounds each origin fetch. 0 means DefaultFetchTimeout.
	FetchTimeout time.Duration

	Logger  log.Logger // nil => no logging
	Metrics Metrics    // nil => NoopMetrics

	// Now stamps CreatedAt on new entries; nil => time.Now. For tests.
	Now func() time.Time
}

// DefaultFetchTimeout applies when Options.FetchTimeout is zero.
const DefaultFetchTimeout = 10 * time.Second

// Resolver is the coalescing coordinator: it answers lookups from the entry
// store, and on a miss guarantees at most one origin fetch per key no matter
// how many callers ask concurrently. The winning caller requests admission
// from the scheduler, fetches, populates the store, and broadcasts the result
// to every waiter.
type Resolver struct {
	store *cache.Store
	sched *scheduler.Scheduler
	sf    singleflight.Group[string, flightOutcome]

	timeout time.Duration
	logger  log.Logger
	metrics Metrics
	now     func() time.Time

	_       util.CacheLinePad
	fetches util.PaddedAtomicInt64
	waits   util.PaddedAtomicInt64
}

// NewResolver constructs a Resolver from Options.
// It panics if Store or Scheduler is nil.
func NewResolver(opt Options) *Resolver {
	if opt.Store == nil {
		panic("proxy: Options.Store is required")
	}
	if opt.Scheduler == nil {
		panic("proxy: Options.Scheduler is required")
	}
	if opt.FetchTimeout <= 0 {
		opt.FetchTimeout = DefaultFetchTimeout
	}
	if opt.Logger == nil {
		opt.Logger = log.NewNopLogger()
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	return &Resolver{
		store:   opt.Store,
		sched:   opt.Scheduler,
		timeout: opt.FetchTimeout,
		logger:  opt.Logger,
		metrics: opt.Metrics,
		now:     opt.Now,
	}
}

// Resolve returns the entry for url, fetching it via fetch on a miss.
//
// Exactly one origin fetch runs per key per miss episode: concurrent callers
// for the same missing URL coalesce onto one flight and all receive the same
// entry or the same *FetchError. A payload larger than the cache capacity is
// still returned to the caller, it just is not stored (pass-through).
//
// Stats accounting: a store hit counts as a hit; both the fetcher and its
// waiters count as misses for that episode (the store lookup that opened the
// episode already recorded them).
func (r *Resolver) Resolve(ctx context.Context, url string, fetch FetchFunc) (Result, error) {
	start := time.Now()

	if e, ok := r.store.Get(url); ok {
		res := Result{Entry: e, Role: RoleHit, Cached: true, Elapsed: time.Since(start)}
		r.metrics.Resolved(RoleHit, res.Elapsed)
		return res, nil
	}

	out, shared, err := r.sf.Do(ctx, url, func() (flightOutcome, error) {
		return r.fetchAndStore(ctx, url, fetch)
	})

	role := RoleFetcher
	if shared {
		role = RoleWaited
		r.waits.Add(1)
	}
	elapsed := time.Since(start)
	r.metrics.Resolved(role, elapsed)

	if err != nil {
		return Result{Role: role, Elapsed: elapsed}, err
	}
	return Result{Entry: out.entry, Role: role, Cached: out.cached, Elapsed: elapsed}, nil
}

// fetchAndStore runs on the flight leader only: scheduler admission, the
// timed origin fetch, then store population for cacheable statuses.
func (r *Resolver) fetchAndStore(ctx context.Context, url string, fetch FetchFunc) (flightOutcome, error) {
	// Double-check after winning the flight: a previous leader may complete
	// and deregister between this caller's store miss and its registration,
	// leaving the entry already cached.
	if e, ok := r.store.Get(url); ok {
		return flightOutcome{entry: e, cached: true}, nil
	}

	permit, err := r.sched.Admit(ctx, url)
	if err != nil {
		return flightOutcome{}, err
	}
	defer permit.Release()

	r.fetches.Add(1)
	r.metrics.FetchStarted()

	fctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	began := time.Now()
	resp, err := fetch(fctx, url)
	d := time.Since(began)
	r.metrics.FetchFinished(d, err)

	if err != nil {
		level.Warn(r.logger).Log("msg", "origin fetch failed", "url", url, "took", d, "err", err)
		var fe *FetchError
		if errors.As(err, &fe) {
			return flightOutcome{}, err
		}
		return flightOutcome{}, &FetchError{URL: url, Err: err}
	}

	e := cache.NewEntry(url, resp.Status, resp.Header, resp.Body, r.now())
	out := flightOutcome{entry: e}
	switch {
	case resp.Status >= 200 && resp.Status < 400:
		out.cached = r.store.Put(e)
		if !out.cached {
			level.Debug(r.logger).Log("msg", "payload exceeds cache capacity, serving uncached",
				"url", url, "size", e.Size)
		}
	default:
		// Unsuccessful responses are returned to the caller but never cached.
		level.Debug(r.logger).Log("msg", "not caching unsuccessful response",
			"url", url, "status", resp.Status)
	}
	return out, nil
}

// Stats combines store counters with resolver-level instrumentation.
type Stats struct {
	cache.Stats
	InflightRequests int   `json:"inflight_requests"`
	OriginFetches    int64 `json:"origin_fetches"`
	CoalescedWaits   int64 `json:"coalesced_waits"`
}

// Stats returns a counters snapshot for the dashboard/telemetry layer.
func (r *Resolver) Stats() Stats {
	return Stats{
		Stats:            r.store.Stats(),
		InflightRequests: r.sf.Len(),
		OriginFetches:    r.fetches.Load(),
		CoalescedWaits:   r.waits.Load(),
	}
}

// Entries lists cached entries in recency order, most-recent first.
func (r *Resolver) Entries() []cache.EntryInfo { return r.store.Entries() }

// SetAlgorithm swaps the fetch admission algorithm at runtime.
func (r *Resolver) SetAlgorithm(name string) error { return r.sched.SetAlgorithm(name) }

// SchedulerSnapshot exposes the admission gate state for observability.
func (r *Resolver) SchedulerSnapshot() scheduler.Snapshot { return r.sched.Snapshot() }
