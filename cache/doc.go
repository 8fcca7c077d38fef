// Package cache provides the byte-bounded LRU entry store backing the
// SwiftCache forward proxy.
//
// Design
//
//   - Storage: a map[string]*node for lookups plus an intrusive MRU↔LRU
//     doubly linked list for ordering. All operations are O(1) expected;
//     eviction work is O(1) per removed entry.
//
//   - Capacity: the budget is bytes of resident body data, not entry count.
//     Put evicts from the LRU tail until the new entry fits. An entry larger
//     than the whole budget is rejected and store state is left untouched.
//
//   - Concurrency: one mutex guards map, list, and byte total, so recency is
//     a strict global order and stats snapshots are never torn. Hit/miss/evict
//     counters are padded atomics so Stats can read them without the lock.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     By default NoopMetrics is used; plug the Prometheus adapter from
//     metrics/prom to export them.
//
//   - Callbacks: Options.OnEvict is invoked for every capacity eviction.
//
// Basic usage
//
//	s := cache.New(cache.Options{CapacityBytes: 5 << 20})
//	s.Put(cache.NewEntry("http://a", 200, hdr, body, time.Now()))
//	if e, ok := s.Get("http://a"); ok {
//	    _ = e.Body
//	}
//
// There is no TTL: entries live until evicted by capacity pressure.
package cache
