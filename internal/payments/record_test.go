package payments

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRecordRoundTripPreservesUnknownFields(t *testing.T) {
	line := `{"id":"txn-1","processing_date":"2024-01-02","psp_name":"Stripe","status":"PENDING","amount":12.5,"meta":{"region":"eu"}}`
	var rec Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.ID != "txn-1" || rec.PSPName != "Stripe" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Status != StatusPending {
		t.Fatalf("status not normalized: %q", rec.Status)
	}
	if _, ok := rec.Extra("amount"); !ok {
		t.Fatalf("amount not preserved")
	}

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"amount":12.5`, `"region":"eu"`, `"id":"txn-1"`} {
		if !strings.Contains(string(out), want) {
			t.Fatalf("encoded record missing %s: %s", want, out)
		}
	}

	var again Record
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("unmarshal round trip: %v", err)
	}
	if again.ID != rec.ID || again.Status != rec.Status {
		t.Fatalf("round trip mismatch: %+v vs %+v", again, rec)
	}
}

func TestRecordUnmarshalRejectsIncomplete(t *testing.T) {
	cases := map[string]string{
		"missing id":     `{"status":"pending"}`,
		"missing status": `{"id":"txn-2"}`,
		"not an object":  `[1,2,3]`,
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			var rec Record
			if err := json.Unmarshal([]byte(line), &rec); err == nil {
				t.Fatalf("expected decode failure for %s", line)
			}
		})
	}
}

func TestRecordTimestampFormats(t *testing.T) {
	cases := []string{
		"2024-03-01T10:00:00.123456Z",
		"2024-03-01T10:00:00Z",
		"2024-03-01T10:00:00",
	}
	for _, ts := range cases {
		var rec Record
		line := `{"id":"t","status":"pending","status_updated_at":"` + ts + `"}`
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal %s: %v", ts, err)
		}
		if rec.StatusUpdatedAt == nil {
			t.Fatalf("timestamp %s not parsed", ts)
		}
		if got := rec.StatusUpdatedAt.UTC(); got.Year() != 2024 || got.Hour() != 10 {
			t.Fatalf("timestamp %s parsed as %v", ts, got)
		}
	}
}

func TestRecordCloneIsolation(t *testing.T) {
	now := time.Now().UTC()
	rec := &Record{ID: "a", Status: StatusPending, StatusUpdatedAt: &now}
	rec.SetExtra("k", json.RawMessage(`"v"`))

	cp := rec.Clone()
	rec.Status = StatusApproved
	later := now.Add(time.Hour)
	*rec.StatusUpdatedAt = later
	rec.SetExtra("k", json.RawMessage(`"changed"`))

	if cp.Status != StatusPending {
		t.Fatalf("clone status mutated: %s", cp.Status)
	}
	if !cp.StatusUpdatedAt.Equal(now) {
		t.Fatalf("clone timestamp mutated: %v", cp.StatusUpdatedAt)
	}
	if v, _ := cp.Extra("k"); string(v) != `"v"` {
		t.Fatalf("clone extra mutated: %s", v)
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Fatalf("pending must not be terminal")
	}
	for _, s := range []Status{StatusApproved, StatusDeclined, Status("refunded")} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
}
