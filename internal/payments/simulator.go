package payments

import (
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultAdvanceProbability is the per-invocation chance an eligible record
// advances, matching observed payment-network settlement pacing in demo data.
const DefaultAdvanceProbability = 0.3

// ProbabilitySource supplies the randomness driving the simulator.
// Implemented by lockedSource (production) and fixed sources in tests.
type ProbabilitySource interface {
	Float64() float64
	IntN(n int) int
}

// lockedSource guards a PCG generator so the simulator stays safe even if a
// caller invokes it outside the store lock.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedSource() *lockedSource {
	seed := uint64(time.Now().UnixNano())
	return &lockedSource{rng: rand.New(rand.NewPCG(seed, seed>>1))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Simulator probabilistically advances records along the transition table,
// standing in for external payment-network progression. Transitions are
// strictly one-way: a record whose status is not a table key never moves.
type Simulator struct {
	p   float64
	src ProbabilitySource
	now func() time.Time
}

// NewSimulator constructs a simulator with advance probability p. A nil src
// selects a time-seeded locked generator.
func NewSimulator(p float64, src ProbabilitySource) *Simulator {
	if p < 0 || p > 1 {
		p = DefaultAdvanceProbability
	}
	if src == nil {
		src = newLockedSource()
	}
	return &Simulator{
		p:   p,
		src: src,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// MaybeAdvance advances r with probability p when its status has eligible
// destinations, choosing uniformly among them and stamping the transition
// time. It reports whether r changed. Callers synchronize access to r; the
// store does this under its write lock.
func (s *Simulator) MaybeAdvance(r *Record) bool {
	dests, ok := Transitions[r.Status]
	if !ok || len(dests) == 0 {
		return false
	}
	if s.src.Float64() >= s.p {
		return false
	}
	r.Status = dests[s.src.IntN(len(dests))]
	ts := s.now().UTC()
	r.StatusUpdatedAt = &ts
	return true
}
