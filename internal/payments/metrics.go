package payments

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paycache_status_transitions_total",
		Help: "Simulated status transitions, labelled by destination status.",
	}, []string{"to"})

	persistCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paycache_persist_cycles_total",
		Help: "Completed persistence cycles by result.",
	}, []string{"result"})

	persistCoalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paycache_persist_coalesced_total",
		Help: "Persist requests merged into an already pending signal.",
	})

	decodeSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paycache_decode_skipped_lines_total",
		Help: "Archive lines dropped at load time (malformed or duplicate id).",
	})
)
