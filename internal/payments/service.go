package payments

import "context"

// Persister receives stale-snapshot signals from the service. Implemented by
// Writer; tests substitute a recorder.
type Persister interface {
	Request()
}

// Page is one slice of the filtered record sequence, echoing the request
// parameters alongside the data.
type Page struct {
	Date    string   `json:"date"`
	PSPName string   `json:"psp_name,omitempty"`
	Status  string   `json:"status,omitempty"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
	Count   int      `json:"count"`
	Data    []Record `json:"data"`
}

// Service is the query facade over the store, simulator, and writer. It holds
// the only reference to the store; all read and mutation traffic passes
// through it.
type Service struct {
	store     *Store
	sim       *Simulator
	persister Persister
}

// NewService wires the facade. A nil persister disables persistence
// signalling (tests).
func NewService(store *Store, sim *Simulator, persister Persister) *Service {
	return &Service{store: store, sim: sim, persister: persister}
}

// Store exposes the underlying record store (health reporting, seeding).
func (s *Service) Store() *Store { return s.store }

// ListPayments filters the cache, runs the simulator over the whole filtered
// sequence, then slices out the requested page. Every filtered record is
// visited before pagination so the page reflects post-transition state; that
// makes the cost O(filtered) regardless of limit, which matches the upstream
// contract. One persistence signal covers the whole batch.
//
// Callers validate page >= 1 and 1 <= limit <= 100 at the adapter boundary.
func (s *Service) ListPayments(_ context.Context, q Query, page, limit int) (Page, error) {
	matches := s.store.Filter(q)
	if changed := s.store.AdvanceEach(matches, s.sim); changed > 0 && s.persister != nil {
		s.persister.Request()
	}

	lo := (page - 1) * limit
	hi := lo + limit
	if lo >= len(matches) {
		return Page{}, ErrNoMoreRecords
	}
	if hi > len(matches) {
		hi = len(matches)
	}
	data := s.store.CloneAll(matches[lo:hi])
	return Page{
		Date:    q.Date,
		PSPName: q.PSPName,
		Status:  q.Status,
		Page:    page,
		Limit:   limit,
		Count:   len(data),
		Data:    data,
	}, nil
}

// GetPayment looks up one record, gives it a single simulator pass, and
// returns its post-transition value.
func (s *Service) GetPayment(_ context.Context, id string) (Record, error) {
	rec, ok := s.store.FindByID(id)
	if !ok {
		return Record{}, ErrNotFound
	}
	if changed := s.store.AdvanceEach([]*Record{rec}, s.sim); changed > 0 && s.persister != nil {
		s.persister.Request()
	}
	return s.store.CloneAll([]*Record{rec})[0], nil
}
