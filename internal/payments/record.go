// Package payments implements the in-memory payment record cache: the line
// codec for the durable archive, the ordered store, the status transition
// simulator, the coalescing persistence writer, and the query service the
// HTTP adapter consumes.
package payments

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the processing state of a payment transaction.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Transitions maps a status to the destinations it may advance to. A status
// absent from the map is terminal: once a record reaches it, no further
// transition is possible.
var Transitions = map[Status][]Status{
	StatusPending: {StatusApproved, StatusDeclined},
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	dests, ok := Transitions[s]
	return !ok || len(dests) == 0
}

// recordFields are the JSON keys lifted into typed fields; everything else a
// line carries is preserved verbatim in the record's extra bag.
var recordFields = []string{"id", "processing_date", "psp_name", "status", "status_updated_at"}

// Record is one payment transaction. Identity is the ID; status and the
// status timestamp mutate over the record's lifetime. Unknown fields survive
// decode/encode round trips untouched.
type Record struct {
	ID              string
	ProcessingDate  string
	PSPName         string
	Status          Status
	StatusUpdatedAt *time.Time

	extra map[string]json.RawMessage
}

// Clone returns a deep copy safe to hand out while the original keeps
// mutating under the store lock.
func (r *Record) Clone() Record {
	cp := *r
	if r.StatusUpdatedAt != nil {
		t := *r.StatusUpdatedAt
		cp.StatusUpdatedAt = &t
	}
	if r.extra != nil {
		cp.extra = make(map[string]json.RawMessage, len(r.extra))
		for k, v := range r.extra {
			cp.extra[k] = v
		}
	}
	return cp
}

// Extra returns the raw value of an unknown field preserved from decode.
func (r *Record) Extra(key string) (json.RawMessage, bool) {
	v, ok := r.extra[key]
	return v, ok
}

// SetExtra attaches an opaque field carried through encode verbatim.
func (r *Record) SetExtra(key string, value json.RawMessage) {
	if r.extra == nil {
		r.extra = make(map[string]json.RawMessage, 1)
	}
	r.extra[key] = value
}

// UnmarshalJSON decodes the typed core and keeps every remaining field in the
// opaque bag. A record without an id or status is rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var rec Record
	if err := unmarshalString(raw, "id", &rec.ID); err != nil {
		return err
	}
	if err := unmarshalString(raw, "processing_date", &rec.ProcessingDate); err != nil {
		return err
	}
	if err := unmarshalString(raw, "psp_name", &rec.PSPName); err != nil {
		return err
	}
	var status string
	if err := unmarshalString(raw, "status", &status); err != nil {
		return err
	}
	rec.Status = Status(strings.ToLower(status))
	if v, ok := raw["status_updated_at"]; ok && string(v) != "null" {
		var ts string
		if err := json.Unmarshal(v, &ts); err != nil {
			return fmt.Errorf("decode status_updated_at: %w", err)
		}
		parsed, err := parseTimestamp(ts)
		if err != nil {
			return fmt.Errorf("decode status_updated_at: %w", err)
		}
		rec.StatusUpdatedAt = &parsed
	}
	if rec.ID == "" {
		return fmt.Errorf("record missing id")
	}
	if rec.Status == "" {
		return fmt.Errorf("record %s missing status", rec.ID)
	}
	for _, key := range recordFields {
		delete(raw, key)
	}
	if len(raw) > 0 {
		rec.extra = raw
	}
	*r = rec
	return nil
}

// MarshalJSON merges the typed core back over the opaque bag.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(r.extra)+len(recordFields))
	for k, v := range r.extra {
		out[k] = v
	}
	var err error
	if out["id"], err = json.Marshal(r.ID); err != nil {
		return nil, err
	}
	if out["processing_date"], err = json.Marshal(r.ProcessingDate); err != nil {
		return nil, err
	}
	if out["psp_name"], err = json.Marshal(r.PSPName); err != nil {
		return nil, err
	}
	if out["status"], err = json.Marshal(r.Status); err != nil {
		return nil, err
	}
	if r.StatusUpdatedAt != nil {
		ts := r.StatusUpdatedAt.UTC().Format(time.RFC3339Nano)
		if out["status_updated_at"], err = json.Marshal(ts); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

func unmarshalString(raw map[string]json.RawMessage, key string, dst *string) error {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
