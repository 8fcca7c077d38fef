package proxy

import "time"

// Metrics exposes resolver-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	// Resolved is called once per Resolve with the caller's role and the
	// total time that caller spent in the resolver.
	Resolved(role Role, d time.Duration)
	// FetchStarted/FetchFinished bracket every origin fetch.
	FetchStarted()
	FetchFinished(d time.Duration, err error)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Resolved(Role, time.Duration)       {}
func (NoopMetrics) FetchStarted()                      {}
func (NoopMetrics) FetchFinished(time.Duration, error) {}

var _ Metrics = NoopMetrics{}
