package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsTotal counts completed sync invocations per domain and outcome.
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gestsync_sync_runs_total",
			Help: "Total number of sync runs by domain and status",
		},
		[]string{"domain", "status"},
	)

	// recordsUpdatedTotal counts records successfully upserted into the
	// local store.
	recordsUpdatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gestsync_sync_records_updated_total",
			Help: "Total number of records upserted into the local store",
		},
		[]string{"domain"},
	)

	// recordsSkippedTotal counts records dropped during reconciliation
	// (missing natural key or individual upsert failure).
	recordsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gestsync_sync_records_skipped_total",
			Help: "Total number of extracted records skipped or failed during reconciliation",
		},
		[]string{"domain"},
	)
)
