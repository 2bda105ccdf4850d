package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/gestpos/gestsync/internal/domain"
	"github.com/gestpos/gestsync/internal/store"
	"github.com/gestpos/gestsync/internal/sync"
)

// ────────────────────────────────────────────────────────────────────────────
// POST /api/admin/sync/{products,customers,payment-methods}-now
// ────────────────────────────────────────────────────────────────────────────

type syncRequest struct {
	CompanyCode string `json:"companyCode"`
	TableName   string `json:"tableName"`
}

type syncFunc func(ctx context.Context, cfg *domain.ExternalDBConfig, companyCode, tableOverride string) sync.Result

// SyncNow runs the given sync against the active configuration. The body is
// optional; when present it may override the company code and the source
// table pattern for this run only.
func (h *adminHandler) SyncNow(run syncFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req syncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
			return
		}

		cfg, err := h.store.ActiveConfig(r.Context())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusConflict, "no active external database configuration")
				return
			}
			log.Error().Err(err).Msg("load active config failed")
			writeError(w, http.StatusInternalServerError, "failed to load active configuration")
			return
		}

		result := run(r.Context(), cfg, req.CompanyCode, req.TableName)
		// The result is always 200: sync failures are reported in the body,
		// not as transport errors.
		writeJSON(w, http.StatusOK, result)
	}
}

// ────────────────────────────────────────────────────────────────────────────
// GET /api/admin/sync/runs
// ────────────────────────────────────────────────────────────────────────────

const defaultRunsLimit = 50

func (h *adminHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list runs failed")
		writeError(w, http.StatusInternalServerError, "failed to list sync runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}
