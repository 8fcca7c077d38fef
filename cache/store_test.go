package cache

import (
	"testing"
	"time"
)

func entry(key string, size int) *Entry {
	return NewEntry(key, 200, nil, make([]byte, size), time.Unix(0, 0))
}

// Basic Put/Get semantics and byte accounting.
func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	s := New(Options{CapacityBytes: 1000})

	if !s.Put(entry("http://a", 100)) {
		t.Fatal("Put a must succeed")
	}
	e, ok := s.Get("http://a")
	if !ok || e.Size != 100 {
		t.Fatalf("Get a: ok=%v size=%d", ok, e.Size)
	}
	if got := s.Usage(); got != 100 {
		t.Fatalf("usage want 100, got %d", got)
	}
	if _, ok := s.Get("http://b"); ok {
		t.Fatal("b must be absent")
	}
}

// Overwriting a key replaces its bytes rather than double-counting them.
func TestStore_PutOverwrite(t *testing.T) {
	t.Parallel()

	s := New(Options{CapacityBytes: 1000})
	s.Put(entry("http://a", 300))
	s.Put(entry("http://a", 500))

	if got := s.Usage(); got != 500 {
		t.Fatalf("usage want 500, got %d", got)
	}
	if got := s.Len(); got != 1 {
		t.Fatalf("items want 1, got %d", got)
	}
}

// Spec scenario: capacity 1000, insert X/Y/Z of 400 bytes each with no
// intervening reads. X is oldest-touched and must be evicted; Y and Z stay.
func TestStore_EvictionOldestFirst(t *testing.T) {
	t.Parallel()

	s := New(Options{CapacityBytes: 1000})
	s.Put(entry("X", 400))
	s.Put(entry("Y", 400))
	s.Put(entry("Z", 400))

	if _, ok := s.Get("X"); ok {
		t.Fatal("X must be evicted")
	}
	if _, ok := s.Get("Y"); !ok {
		t.Fatal("Y must survive")
	}
	if _, ok := s.Get("Z"); !ok {
		t.Fatal("Z must survive")
	}
	st := s.Stats()
	if st.Items != 2 || st.UsageBytes != 800 {
		t.Fatalf("want items=2 usage=800, got items=%d usage=%d", st.Items, st.UsageBytes)
	}
	if st.Evictions != 1 {
		t.Fatalf("want 1 eviction, got %d", st.Evictions)
	}
}

// A Get promotes the entry so a later Put evicts some other victim.
func TestStore_GetPromotes(t *testing.T) {
	t.Parallel()

	s := New(Options{CapacityBytes: 1000})
	s.Put(entry("a", 400)) // LRU = a
	s.Put(entry("b", 400))

	if _, ok := s.Get("a"); !ok { // promote a -> MRU
		t.Fatal("expect hit for a")
	}
	s.Put(entry("c", 400)) // overflow -> evict oldest-touched (b)

	if _, ok := s.Get("b"); ok {
		t.Fatal("b must be evicted")
	}
	if _, ok := s.Get("a"); !ok {
		t.Fatal("a must survive (promoted)")
	}
	if _, ok := s.Get("c"); !ok {
		t.Fatal("c must be present")
	}
}

// An entry bigger than the whole budget is rejected and prior state is intact.
func TestStore_OversizedRejected(t *testing.T) {
	t.Parallel()

	s := New(Options{CapacityBytes: 1000})
	s.Put(entry("a", 400))

	if s.Put(entry("big", 1001)) {
		t.Fatal("oversized Put must be rejected")
	}
	st := s.Stats()
	if st.Items != 1 || st.UsageBytes != 400 {
		t.Fatalf("prior state must be unchanged, got items=%d usage=%d", st.Items, st.UsageBytes)
	}
	if _, ok := s.Get("a"); !ok {
		t.Fatal("a must still be present")
	}
}

// An entry exactly at capacity is admitted and displaces everything else.
func TestStore_ExactCapacityFits(t *testing.T) {
	t.Parallel()

	s := New(Options{CapacityBytes: 1000})
	s.Put(entry("a", 400))
	if !s.Put(entry("b", 1000)) {
		t.Fatal("entry of exactly capacity bytes must be admitted")
	}
	st := s.Stats()
	if st.Items != 1 || st.UsageBytes != 1000 {
		t.Fatalf("want items=1 usage=1000, got items=%d usage=%d", st.Items, st.UsageBytes)
	}
}

// Repeated Get on a present key changes only recency and the hit counter.
func TestStore_HitIsIdempotent(t *testing.T) {
	t.Parallel()

	s := New(Options{CapacityBytes: 1000})
	s.Put(entry("a", 400))

	before := s.Stats()
	for i := 0; i < 5; i++ {
		if _, ok := s.Get("a"); !ok {
			t.Fatal("expect hit")
		}
	}
	after := s.Stats()

	if after.Items != before.Items || after.UsageBytes != before.UsageBytes {
		t.Fatalf("items/usage must not change: before=%+v after=%+v", before, after)
	}
	if after.Hits != before.Hits+5 {
		t.Fatalf("want +5 hits, got %d -> %d", before.Hits, after.Hits)
	}
	if after.Misses != before.Misses {
		t.Fatal("misses must not change on hits")
	}
}

// Entries lists resident entries MRU-first.
func TestStore_EntriesRecencyOrder(t *testing.T) {
	t.Parallel()

	s := New(Options{CapacityBytes: 1000})
	s.Put(entry("a", 100))
	s.Put(entry("b", 100))
	s.Put(entry("c", 100))
	s.Get("a") // a becomes MRU

	var keys []string
	for _, ei := range s.Entries() {
		keys = append(keys, ei.Key)
	}
	want := []string{"a", "c", "b"}
	if len(keys) != len(want) {
		t.Fatalf("want %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("want %v, got %v", want, keys)
		}
	}
}

// OnEvict fires once per capacity eviction with the victim entry.
func TestStore_OnEvictCallback(t *testing.T) {
	t.Parallel()

	var evicted []string
	s := New(Options{
		CapacityBytes: 1000,
		OnEvict:       func(e *Entry) { evicted = append(evicted, e.Key) },
	})
	s.Put(entry("X", 400))
	s.Put(entry("Y", 400))
	s.Put(entry("Z", 400))

	if len(evicted) != 1 || evicted[0] != "X" {
		t.Fatalf("want [X] evicted, got %v", evicted)
	}
}
