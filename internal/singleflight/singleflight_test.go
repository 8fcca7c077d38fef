package singleflight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Concurrent Do calls for one key run fn once; exactly one caller is the
// leader (shared=false) and everyone gets the same value.
func TestGroup_Coalesces(t *testing.T) {
	var g Group[string, string]
	var calls int64

	const n = 50
	start := make(chan struct{})
	var wg sync.WaitGroup
	var leaders atomic.Int64

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, shared, err := g.Do(context.Background(), "k", func() (string, error) {
				atomic.AddInt64(&calls, 1)
				time.Sleep(5 * time.Millisecond)
				return "v", nil
			})
			if err != nil || v != "v" {
				t.Errorf("Do: v=%q err=%v", v, err)
				return
			}
			if !shared {
				leaders.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("fn must run exactly once, got %d", got)
	}
	if got := leaders.Load(); got != 1 {
		t.Fatalf("exactly one leader expected, got %d", got)
	}
	if g.Len() != 0 {
		t.Fatalf("no flights may remain, got %d", g.Len())
	}
}

// All followers observe the leader's error; the key is forgotten afterwards
// so the next Do starts a fresh flight.
func TestGroup_ErrorSharedThenForgotten(t *testing.T) {
	var g Group[string, int]
	boom := errors.New("boom")
	var calls int64

	release := make(chan struct{})
	fn := func() (int, error) {
		atomic.AddInt64(&calls, 1)
		<-release
		return 0, boom
	}

	errc := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, _, err := g.Do(context.Background(), "k", fn)
			errc <- err
		}()
	}
	for g.Len() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		if err := <-errc; !errors.Is(err, boom) {
			t.Fatalf("want boom, got %v", err)
		}
	}

	// Fresh flight for the same key.
	if _, _, err := g.Do(context.Background(), "k", func() (int, error) { return 1, nil }); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("failed flight must not rerun fn for waiters, got %d calls", got)
	}
}

// A cancelled follower unblocks alone; the leader keeps running.
func TestGroup_FollowerCancellation(t *testing.T) {
	var g Group[string, string]

	release := make(chan struct{})
	leaderDone := make(chan struct{})
	go func() {
		defer close(leaderDone)
		v, shared, err := g.Do(context.Background(), "k", func() (string, error) {
			<-release
			return "v", nil
		})
		if err != nil || shared || v != "v" {
			t.Errorf("leader: v=%q shared=%v err=%v", v, shared, err)
		}
	}()
	for g.Len() == 0 {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, shared, err := g.Do(ctx, "k", func() (string, error) { return "", nil })
	if !shared || !errors.Is(err, context.Canceled) {
		t.Fatalf("follower: shared=%v err=%v", shared, err)
	}

	close(release)
	<-leaderDone
}
