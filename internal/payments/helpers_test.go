package payments

import (
	"sync"
	"testing"
	"time"
)

// fixedSource always yields the same draw; f below the probability forces an
// advance, f at or above it forces a skip. n selects the destination.
type fixedSource struct {
	f float64
	n int
}

func (s fixedSource) Float64() float64 { return s.f }
func (s fixedSource) IntN(n int) int   { return s.n % n }

func alwaysAdvance() *Simulator { return NewSimulator(0.3, fixedSource{f: 0}) }
func neverAdvance() *Simulator  { return NewSimulator(0.3, fixedSource{f: 1}) }

// persistRecorder counts Request calls in place of the real writer.
type persistRecorder struct {
	mu    sync.Mutex
	calls int
}

func (p *persistRecorder) Request() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
}

func (p *persistRecorder) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func testRecords() []*Record {
	return []*Record{
		{ID: "t1", ProcessingDate: "2024-06-01", PSPName: "stripe", Status: StatusPending},
		{ID: "t2", ProcessingDate: "2024-06-02", PSPName: "adyen", Status: StatusApproved},
		{ID: "t3", ProcessingDate: "2024-06-02", PSPName: "stripe", Status: StatusPending},
	}
}

func newTestStore(t *testing.T, records []*Record) *Store {
	t.Helper()
	store, dropped := NewStore(records)
	if dropped != 0 {
		t.Fatalf("unexpected duplicate drops: %d", dropped)
	}
	return store
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", d)
}
