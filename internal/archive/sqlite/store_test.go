package sqlite

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"paycache/internal/archive/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "paycache.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreOpenEmpty(t *testing.T) {
	store := newTempStore(t)
	if _, err := store.Open(context.Background()); !errors.Is(err, core.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestStoreReplaceUpserts(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()
	for _, payload := range []string{"first", "second"} {
		p := payload
		if err := store.Replace(ctx, func(w io.Writer) error {
			_, err := io.WriteString(w, p)
			return err
		}); err != nil {
			t.Fatalf("replace %s: %v", p, err)
		}
	}
	rc, err := store.Open(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "second" {
		t.Fatalf("expected last write to win, got %q", b)
	}
}

func TestStoreFailedWriteFuncLeavesRow(t *testing.T) {
	store := newTempStore(t)
	ctx := context.Background()
	if err := store.Replace(ctx, func(w io.Writer) error {
		_, err := io.WriteString(w, "stable")
		return err
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := store.Replace(ctx, func(io.Writer) error {
		return errors.New("encoder failed")
	}); err == nil {
		t.Fatalf("expected failure")
	}
	rc, err := store.Open(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "stable" {
		t.Fatalf("snapshot corrupted: %q", b)
	}
}
