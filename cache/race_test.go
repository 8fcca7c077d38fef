package cache

import (
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"
)

// A mixed workload of concurrent Put/Get/Stats/Entries on random keys.
// Should pass under `-race` without detector reports, and the byte invariant
// must hold at every observed snapshot.
func TestRace_MixedWorkload(t *testing.T) {
	const capacity = 64 << 10
	s := New(Options{CapacityBytes: capacity})

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 2_000
	deadline := time.Now().Add(2 * time.Second)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			for time.Now().Before(deadline) {
				k := "http://host/" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(100) {
				case 0, 1, 2, 3, 4: // ~5% — Stats snapshot
					st := s.Stats()
					if st.UsageBytes > st.CapacityBytes {
						t.Errorf("usage %d exceeds capacity %d", st.UsageBytes, st.CapacityBytes)
						return
					}
				case 5, 6: // ~2% — Entries listing
					s.Entries()
				case 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19: // ~13% — Put
					s.Put(NewEntry(k, 200, nil, make([]byte, 64+r.Intn(512)), time.Now()))
				default: // ~80% — Get
					s.Get(k)
				}
			}
		}(w)
	}
	wg.Wait()

	st := s.Stats()
	if st.UsageBytes > st.CapacityBytes {
		t.Fatalf("final usage %d exceeds capacity %d", st.UsageBytes, st.CapacityBytes)
	}
}
