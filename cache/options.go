package cache

// Metrics exposes store-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict()
	Size(entries int, bytes int64)
}

// Options configures the store. Zero values are safe except CapacityBytes,
// which must be positive; sane defaults are applied in New():
//   - nil Metrics => NoopMetrics
type Options struct {
	// CapacityBytes is the byte budget for resident entry bodies.
	// A single entry larger than this is rejected by Put outright.
	CapacityBytes int64

	// Observability
	// OnEvict is called for every capacity eviction under the store lock;
	// keep callbacks lightweight.
	OnEvict func(e *Entry)
	Metrics Metrics
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is safe for concurrent use and intended as the default when
// no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()                      {}
func (NoopMetrics) Miss()                     {}
func (NoopMetrics) Evict()                    {}
func (NoopMetrics) Size(entries int, b int64) {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
