package payments

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"paycache/internal/archive"
)

// Writer is the single owner of archive writes. Requests arrive on a
// capacity-1 signal channel: while a write is in flight at most one further
// signal stays queued, so any burst of mutating requests coalesces into one
// follow-up write. No other component ever opens the archive for writing.
type Writer struct {
	store  *Store
	ar     archive.Archive
	logger *slog.Logger

	signal    chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewWriter starts the background persistence worker.
func NewWriter(store *Store, ar archive.Archive, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		store:  store,
		ar:     ar,
		logger: logger,
		signal: make(chan struct{}, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Request marks the durable snapshot stale. It never blocks: when a signal
// is already pending the request merges into it.
func (w *Writer) Request() {
	select {
	case <-w.stop:
		return
	default:
	}
	select {
	case w.signal <- struct{}{}:
	default:
		persistCoalescedTotal.Inc()
	}
}

// Close stops the worker, waits for any in-flight write, and performs one
// best-effort final flush if a signal is still pending.
func (w *Writer) Close() {
	w.closeOnce.Do(func() { close(w.stop) })
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			select {
			case <-w.signal:
				w.persist()
			default:
			}
			return
		case <-w.signal:
			w.persist()
		}
	}
}

// persist serializes a point-in-time snapshot into an atomic archive
// replacement. Failures are logged and counted; the stale state is picked up
// by the next signal, so the serving path never observes them.
func (w *Writer) persist() {
	snapshot := w.store.Snapshot()
	err := w.ar.Replace(context.Background(), func(out io.Writer) error {
		return EncodeAll(out, snapshot)
	})
	if err != nil {
		persistCyclesTotal.WithLabelValues("error").Inc()
		w.logger.Error("persist snapshot failed", "error", err, "records", len(snapshot))
		return
	}
	persistCyclesTotal.WithLabelValues("success").Inc()
	w.logger.Debug("persisted snapshot", "records", len(snapshot))
}
