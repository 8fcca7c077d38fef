// Package scheduler gates outbound fetches behind a bounded number of
// permits, with a runtime-swappable admission algorithm deciding which
// queued fetch goes next when a permit frees up.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Supported admission algorithms.
const (
	// FIFO admits strictly in arrival order.
	FIFO = "fifo"
	// SJF admits the smallest estimated job first (by URL burst class),
	// arrival order breaking ties.
	SJF = "sjf"
	// RoundRobin rotates admissions across origin hosts, FIFO within a host.
	RoundRobin = "rr"
)

// aliasFCFS is accepted wherever an algorithm name is, as another
// spelling of FIFO (first-come-first-served).
const aliasFCFS = "fcfs"

// ErrUnknownAlgorithm is returned by SetAlgorithm for unrecognized names.
var ErrUnknownAlgorithm = errors.New("scheduler: unknown algorithm")

// Algorithms lists the supported algorithm names.
func Algorithms() []string { return []string{FIFO, SJF, RoundRobin} }

// canonical maps accepted aliases onto the canonical algorithm name.
func canonical(name string) string {
	if name == aliasFCFS {
		return FIFO
	}
	return name
}

func validAlgorithm(name string) bool {
	switch name {
	case FIFO, SJF, RoundRobin:
		return true
	}
	return false
}

// ticket is one queued admission request.
type ticket struct {
	key   string
	host  string
	class int
	seq   uint64

	grant   chan struct{} // closed when a permit is handed to this ticket
	granted bool          // guarded by Scheduler.mu
}

// Scheduler bounds concurrent outbound fetches to a fixed permit limit.
// Admit blocks while all permits are taken; when one is released the active
// algorithm picks the next queued request. Changing the algorithm affects
// only grants made after the change; permits already held are untouched.
type Scheduler struct {
	limit int

	mu       sync.Mutex
	algo     string
	inUse    int
	seq      uint64
	pending  []*ticket // arrival order
	lastHost string    // rr cursor
}

// Permit represents one unit of outbound fetch capacity.
// Release must be called exactly once when the fetch completes;
// extra calls are no-ops.
type Permit struct {
	s    *Scheduler
	once sync.Once
}

// Release returns the permit, handing the slot to the next queued request
// per the active algorithm.
func (p *Permit) Release() { p.once.Do(p.s.release) }

// New constructs a Scheduler with the given permit limit and algorithm.
// It panics if limit is not positive and returns ErrUnknownAlgorithm for an
// unrecognized algorithm name.
func New(limit int, algo string) (*Scheduler, error) {
	if limit <= 0 {
		panic("scheduler: limit must be > 0")
	}
	algo = canonical(algo)
	if !validAlgorithm(algo) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algo)
	}
	return &Scheduler{limit: limit, algo: algo}, nil
}

// Admit blocks until a permit is available for key per the active algorithm,
// or until ctx is done. On success the caller owns the returned Permit and
// must Release it when the fetch completes.
func (s *Scheduler) Admit(ctx context.Context, key string) (*Permit, error) {
	s.mu.Lock()
	// Fast path: free slot and nobody queued ahead of us.
	if s.inUse < s.limit && len(s.pending) == 0 {
		s.inUse++
		s.lastHost = hostOf(key)
		s.mu.Unlock()
		return &Permit{s: s}, nil
	}

	tk := &ticket{
		key:   key,
		host:  hostOf(key),
		class: burstClass(key),
		grant: make(chan struct{}),
	}
	s.seq++
	tk.seq = s.seq
	s.pending = append(s.pending, tk)
	s.mu.Unlock()

	select {
	case <-tk.grant:
		return &Permit{s: s}, nil
	case <-ctx.Done():
		s.mu.Lock()
		if tk.granted {
			// The grant raced with cancellation: we own a slot after all,
			// so pass it straight on.
			s.grantNextLocked()
			s.mu.Unlock()
			return nil, ctx.Err()
		}
		for i, p := range s.pending {
			if p == tk {
				s.pending = append(s.pending[:i], s.pending[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		return nil, ctx.Err()
	}
}

// SetAlgorithm swaps the admission algorithm at runtime.
// In-flight fetches are unaffected; the new order applies to the next grant.
func (s *Scheduler) SetAlgorithm(name string) error {
	name = canonical(name)
	if !validAlgorithm(name) {
		return fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	s.mu.Lock()
	s.algo = name
	s.mu.Unlock()
	return nil
}

// Algorithm returns the active algorithm name.
func (s *Scheduler) Algorithm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.algo
}

// Snapshot is a point-in-time view of scheduler state for observability.
type Snapshot struct {
	Algorithm string `json:"current_algorithm"`
	Limit     int    `json:"max_concurrent"`
	InUse     int    `json:"in_use"`
	Queued    int    `json:"queued"`
}

// Snapshot returns the current scheduler state.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Algorithm: s.algo,
		Limit:     s.limit,
		InUse:     s.inUse,
		Queued:    len(s.pending),
	}
}

// release frees one slot, granting it to the next pick if anyone is queued.
func (s *Scheduler) release() {
	s.mu.Lock()
	s.grantNextLocked()
	s.mu.Unlock()
}

// grantNextLocked gives up the caller's slot and, if the queue is non-empty,
// immediately hands it to the ticket chosen by the active algorithm.
func (s *Scheduler) grantNextLocked() {
	s.inUse--
	if len(s.pending) == 0 {
		return
	}
	i := s.pickLocked()
	tk := s.pending[i]
	s.pending = append(s.pending[:i], s.pending[i+1:]...)
	tk.granted = true
	s.inUse++
	s.lastHost = tk.host
	close(tk.grant)
}

// pickLocked selects the index of the next ticket per the active algorithm.
// pending is kept in arrival order, so index 0 is the oldest request.
func (s *Scheduler) pickLocked() int {
	switch s.algo {
	case SJF:
		best := 0
		for i, tk := range s.pending {
			if tk.class < s.pending[best].class {
				best = i
			}
		}
		return best
	case RoundRobin:
		// Rotate across the distinct queued hosts, in order of each host's
		// oldest request: the host after lastHost in that cycle goes next.
		hosts := make([]string, 0, len(s.pending))
		seen := make(map[string]bool, len(s.pending))
		for _, tk := range s.pending {
			if !seen[tk.host] {
				seen[tk.host] = true
				hosts = append(hosts, tk.host)
			}
		}
		next := hosts[0]
		for i, h := range hosts {
			if h == s.lastHost {
				next = hosts[(i+1)%len(hosts)]
				break
			}
		}
		for i, tk := range s.pending {
			if tk.host == next {
				return i
			}
		}
		return 0
	default: // FIFO
		return 0
	}
}
