package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"paycache/internal/archive"
)

// Store is the ordered in-memory record cache. It is built once at startup
// and lives for the process lifetime; all mutation happens under its write
// lock, so two concurrent simulator invocations can never race on the same
// record's status/timestamp pair.
type Store struct {
	mu      sync.RWMutex
	records []*Record
	index   map[string]*Record
}

// NewStore builds a store over records, preserving slice order. Records with
// a duplicate id are dropped and counted, keeping the unique-id invariant
// without aborting the load.
func NewStore(records []*Record) (*Store, int) {
	s := &Store{
		records: make([]*Record, 0, len(records)),
		index:   make(map[string]*Record, len(records)),
	}
	dropped := 0
	for _, rec := range records {
		if _, exists := s.index[rec.ID]; exists {
			dropped++
			continue
		}
		s.records = append(s.records, rec)
		s.index[rec.ID] = rec
	}
	return s, dropped
}

// LoadStore reads the full archive through the codec and builds the store.
// A missing archive is fatal; malformed or duplicate lines are dropped with
// a warning and a metric, and the load continues.
func LoadStore(ctx context.Context, ar archive.Archive, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rc, err := ar.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = rc.Close() }()

	records, skipped, err := DecodeAll(rc)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	store, dropped := NewStore(records)
	if n := skipped + dropped; n > 0 {
		decodeSkippedTotal.Add(float64(n))
		logger.Warn("skipped invalid archive lines", "skipped", skipped, "duplicate_ids", dropped)
	}
	logger.Info("loaded payment records", "records", store.Len(), "driver", ar.Driver())
	return store, nil
}

// Len returns the number of cached records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Query holds the optional list filters. Empty fields match everything.
type Query struct {
	Date    string // prefix match on processing_date
	PSPName string // case-insensitive equality
	Status  string // case-insensitive equality
}

func (q Query) matches(r *Record) bool {
	if q.Date != "" && !strings.HasPrefix(r.ProcessingDate, q.Date) {
		return false
	}
	if q.PSPName != "" && !strings.EqualFold(r.PSPName, q.PSPName) {
		return false
	}
	if q.Status != "" && !strings.EqualFold(string(r.Status), q.Status) {
		return false
	}
	return true
}

// Filter returns handles to every record matching all supplied predicates,
// in insertion order. Callers must not read the records' mutable fields
// directly; use AdvanceEach and CloneAll, which take the lock.
func (s *Store) Filter(q Query) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		if q.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// FindByID returns a handle to the record with the given id.
func (s *Store) FindByID(id string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.index[id]
	return r, ok
}

// AdvanceEach runs the simulator over every record in recs under the write
// lock and returns how many changed.
func (s *Store) AdvanceEach(recs []*Record, sim *Simulator) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for _, r := range recs {
		if sim.MaybeAdvance(r) {
			changed++
			transitionsTotal.WithLabelValues(string(r.Status)).Inc()
		}
	}
	return changed
}

// CloneAll returns value copies of recs taken under the read lock, safe to
// serialize while other requests keep mutating the originals.
func (s *Store) CloneAll(recs []*Record) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}

// Snapshot returns a point-in-time deep copy of the whole record set in
// insertion order. The copy is fully decoupled from later in-place mutation;
// the persistence writer serializes it without holding the store lock.
func (s *Store) Snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}
