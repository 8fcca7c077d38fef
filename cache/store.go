package cache

import (
	"sync"

	"github.com/vans-aj/SwiftCache/internal/util"
)

// Store is a byte-capacity-bounded LRU map of canonical URL → Entry.
// All methods are safe for concurrent use by multiple goroutines.
//
// A single mutex guards the map, the intrusive MRU↔LRU list, and the byte
// total, so recency order is a strict global sequence: every Get and Put is
// one critical section and the usage invariant (usage <= capacity) holds
// after any completed operation.
type Store struct {
	// ---- guarded by mu ----
	mu    sync.Mutex
	m     map[string]*node
	head  *node // MRU
	tail  *node // LRU
	usage int64 // resident body bytes

	cap int64
	opt Options

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

// New constructs a Store with the provided Options.
// It panics if CapacityBytes is not positive.
func New(opt Options) *Store {
	if opt.CapacityBytes <= 0 {
		panic("cache: CapacityBytes must be > 0")
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	return &Store{
		m:   make(map[string]*node),
		cap: opt.CapacityBytes,
		opt: opt,
	}
}

// Get returns the entry for key and a presence flag.
// On hit the entry is promoted to MRU. Get never triggers a fetch.
func (s *Store) Get(key string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[key]
	if !ok {
		s.misses.Add(1)
		s.opt.Metrics.Miss()
		return nil, false
	}
	s.moveToFront(n)
	s.hits.Add(1)
	s.opt.Metrics.Hit()
	return n.entry, true
}

// Put inserts or overwrites the entry for e.Key and marks it MRU, evicting
// LRU entries until the byte budget is satisfied. It returns false without
// touching store state when a single entry exceeds the total capacity.
func (s *Store) Put(e *Entry) bool {
	if e.Size > s.cap {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.m[e.Key]; ok {
		s.removeNode(old)
		delete(s.m, e.Key)
	}

	// Make room, oldest-touched first.
	for s.usage+e.Size > s.cap {
		victim := s.tail
		if victim == nil {
			break
		}
		s.evictNode(victim)
	}

	n := &node{entry: e}
	s.m[e.Key] = n
	s.insertFront(n)

	s.opt.Metrics.Size(len(s.m), s.usage)
	return true
}

// Len returns the number of resident entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Usage returns the resident body bytes.
func (s *Store) Usage() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// Capacity returns the configured byte budget.
func (s *Store) Capacity() int64 { return s.cap }

// Stats returns a snapshot of store counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	items, usage := len(s.m), s.usage
	s.mu.Unlock()

	return Stats{
		Items:         items,
		UsageBytes:    usage,
		CapacityBytes: s.cap,
		Hits:          s.hits.Load(),
		Misses:        s.misses.Load(),
		Evictions:     int64(s.evicts.Load()),
	}
}

// Entries lists resident entries in recency order, most-recently-used first.
// The order is for observability only.
func (s *Store) Entries() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]EntryInfo, 0, len(s.m))
	for n := s.head; n != nil; n = n.next {
		out = append(out, EntryInfo{
			Key:       n.entry.Key,
			Size:      n.entry.Size,
			CreatedAt: n.entry.CreatedAt,
		})
	}
	return out
}

// -------------------- internals (mu held) --------------------

// insertFront inserts n at MRU in O(1).
func (s *Store) insertFront(n *node) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.usage += n.entry.Size
}

// moveToFront promotes n to MRU in O(1).
func (s *Store) moveToFront(n *node) {
	if n == s.head {
		return
	}
	// detach
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.tail == n {
		s.tail = n.prev
	}
	// insert at head
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
}

// removeNode removes n from the list and updates the byte total in O(1).
func (s *Store) removeNode(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
	s.usage -= n.entry.Size
	if s.usage < 0 {
		s.usage = 0
	}
}

// evictNode removes the node, updates counters, and calls OnEvict.
func (s *Store) evictNode(n *node) {
	s.removeNode(n)
	delete(s.m, n.entry.Key)
	s.evicts.Add(1)
	s.opt.Metrics.Evict()
	if cb := s.opt.OnEvict; cb != nil {
		cb(n.entry)
	}
}
