package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestGetPaymentTerminalRecordUnchangedNoPersist(t *testing.T) {
	store := newTestStore(t, testRecords())
	persister := &persistRecorder{}
	svc := NewService(store, alwaysAdvance(), persister)

	rec, err := svc.GetPayment(context.Background(), "t2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Status != StatusApproved {
		t.Fatalf("approved record mutated to %s", rec.Status)
	}
	if persister.Calls() != 0 {
		t.Fatalf("terminal record must not trigger persistence")
	}
}

func TestGetPaymentAdvancesAndPersistsOnce(t *testing.T) {
	store := newTestStore(t, testRecords())
	persister := &persistRecorder{}
	svc := NewService(store, alwaysAdvance(), persister)

	rec, err := svc.GetPayment(context.Background(), "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Status == StatusPending {
		t.Fatalf("forced draw must advance the record")
	}
	if rec.StatusUpdatedAt == nil {
		t.Fatalf("transition must stamp the timestamp")
	}
	if persister.Calls() != 1 {
		t.Fatalf("expected exactly one persist signal, got %d", persister.Calls())
	}

	// A second read of the now-terminal record never reverts or re-persists.
	settled := rec.Status
	again, err := svc.GetPayment(context.Background(), "t1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.Status != settled {
		t.Fatalf("status changed after terminal: %s -> %s", settled, again.Status)
	}
	if persister.Calls() != 1 {
		t.Fatalf("terminal re-read triggered persistence")
	}
}

func TestGetPaymentUnknownID(t *testing.T) {
	svc := NewService(newTestStore(t, testRecords()), neverAdvance(), &persistRecorder{})
	if _, err := svc.GetPayment(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPaymentsPreSimulationOrderAndFilter(t *testing.T) {
	store := newTestStore(t, testRecords())
	persister := &persistRecorder{}
	svc := NewService(store, neverAdvance(), persister)

	page, err := svc.ListPayments(context.Background(), Query{Status: "pending"}, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Count != 2 || page.Data[0].ID != "t1" || page.Data[1].ID != "t3" {
		t.Fatalf("expected t1,t3 in insertion order: %+v", page.Data)
	}
	if persister.Calls() != 0 {
		t.Fatalf("no transition, no persist")
	}
	if page.Status != "pending" || page.Page != 1 || page.Limit != 10 {
		t.Fatalf("request parameters not echoed: %+v", page)
	}
}

func TestListPaymentsAdvancesWholeFilteredSetOncePersist(t *testing.T) {
	store := newTestStore(t, testRecords())
	persister := &persistRecorder{}
	svc := NewService(store, alwaysAdvance(), persister)

	// limit 1 returns only t1, but t3 must advance too: mutation covers the
	// whole filtered sequence, not just the requested page.
	page, err := svc.ListPayments(context.Background(), Query{Status: "pending"}, 1, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Count != 1 {
		t.Fatalf("expected single-record page, got %d", page.Count)
	}
	if page.Data[0].Status == StatusPending {
		t.Fatalf("page must reflect post-transition state")
	}
	if persister.Calls() != 1 {
		t.Fatalf("expected one persist signal for the batch, got %d", persister.Calls())
	}
	t3, _ := store.FindByID("t3")
	if t3.Status == StatusPending {
		t.Fatalf("off-page filtered record did not advance")
	}

	// Once moved out of pending, an identical later call changes nothing.
	if _, err := svc.ListPayments(context.Background(), Query{}, 1, 10); err != nil {
		t.Fatalf("second list: %v", err)
	}
	if persister.Calls() != 1 {
		t.Fatalf("terminal records re-triggered persistence")
	}
}

func TestListPaymentsPagination(t *testing.T) {
	records := make([]*Record, 0, 5)
	for i := 1; i <= 5; i++ {
		records = append(records, &Record{ID: fmt.Sprintf("p%d", i), Status: StatusApproved})
	}
	svc := NewService(newTestStore(t, records), neverAdvance(), &persistRecorder{})
	ctx := context.Background()

	cases := []struct {
		page, limit int
		want        []string
	}{
		{1, 2, []string{"p1", "p2"}},
		{2, 2, []string{"p3", "p4"}},
		{3, 2, []string{"p5"}},
		{1, 100, []string{"p1", "p2", "p3", "p4", "p5"}},
	}
	for _, tc := range cases {
		page, err := svc.ListPayments(ctx, Query{}, tc.page, tc.limit)
		if err != nil {
			t.Fatalf("page %d: %v", tc.page, err)
		}
		if page.Count != len(tc.want) {
			t.Fatalf("page %d: want %d records, got %d", tc.page, len(tc.want), page.Count)
		}
		for i, id := range tc.want {
			if page.Data[i].ID != id {
				t.Fatalf("page %d position %d: want %s got %s", tc.page, i, id, page.Data[i].ID)
			}
		}
	}

	if _, err := svc.ListPayments(ctx, Query{}, 4, 2); !errors.Is(err, ErrNoMoreRecords) {
		t.Fatalf("page past the end: expected ErrNoMoreRecords, got %v", err)
	}
	if _, err := svc.ListPayments(ctx, Query{PSPName: "nobody"}, 1, 10); !errors.Is(err, ErrNoMoreRecords) {
		t.Fatalf("empty filter result: expected ErrNoMoreRecords, got %v", err)
	}
}

func TestListPaymentsConcurrentReadsKeepOneWayInvariant(t *testing.T) {
	records := make([]*Record, 0, 50)
	for i := 0; i < 50; i++ {
		records = append(records, &Record{ID: fmt.Sprintf("c%d", i), Status: StatusPending})
	}
	store := newTestStore(t, records)
	svc := NewService(store, NewSimulator(0.3, nil), &persistRecorder{})
	ctx := context.Background()

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				_, _ = svc.ListPayments(ctx, Query{}, 1, 100)
			}
		}()
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	for _, rec := range store.Snapshot() {
		if rec.Status != StatusPending && rec.StatusUpdatedAt == nil {
			t.Fatalf("record %s advanced without a timestamp", rec.ID)
		}
		if rec.Status != StatusPending && rec.Status != StatusApproved && rec.Status != StatusDeclined {
			t.Fatalf("record %s in unknown status %s", rec.ID, rec.Status)
		}
	}
}
