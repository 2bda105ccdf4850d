package sync

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/gestpos/gestsync/internal/tablename"
)

// reconcileStats aggregates one reconciliation pass.
type reconcileStats struct {
	processed int // records successfully upserted
	skipped   int // records without a natural key
	failed    int // records whose individual upsert failed
}

// reconcile upserts extracted records into the local store one at a time.
// Failure isolation is the point of this loop: a record with an empty
// natural key is skipped with a warning, a failing upsert is logged and does
// not abort the remaining records, and only the successfully processed
// records make it into the counts. There is no batch transaction: a crash
// mid-batch leaves the already-upserted records committed, which is safe
// because a rerun converges on the same rows.
func reconcile[T any](ctx context.Context, dom tablename.Domain, records []T,
	key func(T) string, upsert func(context.Context, T) error) reconcileStats {

	var stats reconcileStats
	for i, record := range records {
		k := key(record)
		if k == "" {
			stats.skipped++
			log.Warn().
				Str("domain", string(dom)).
				Int("index", i).
				Msg("record without natural key skipped")
			continue
		}

		if err := upsert(ctx, record); err != nil {
			stats.failed++
			log.Warn().
				Err(err).
				Str("domain", string(dom)).
				Str("code", k).
				Msg("record upsert failed, continuing with remaining records")
			continue
		}
		stats.processed++
	}

	recordsUpdatedTotal.WithLabelValues(string(dom)).Add(float64(stats.processed))
	recordsSkippedTotal.WithLabelValues(string(dom)).Add(float64(stats.skipped + stats.failed))
	return stats
}
