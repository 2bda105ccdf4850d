// Package api exposes the back-office administration surface: external
// database configuration CRUD, on-demand sync triggers, run history, and
// catalog exports.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gestpos/gestsync/internal/domain"
	"github.com/gestpos/gestsync/internal/store"
	"github.com/gestpos/gestsync/internal/sync"
)

// Syncer is the slice of the sync service the admin surface needs.
type Syncer interface {
	TestConnection(ctx context.Context, cfg *domain.ExternalDBConfig) bool
	SyncProducts(ctx context.Context, cfg *domain.ExternalDBConfig, companyCode, tableOverride string) sync.Result
	SyncCustomers(ctx context.Context, cfg *domain.ExternalDBConfig, companyCode, tableOverride string) sync.Result
	SyncPaymentMethods(ctx context.Context, cfg *domain.ExternalDBConfig, companyCode, tableOverride string) sync.Result
}

// NewRouter wires all dependencies and returns the chi router.
func NewRouter(st *store.Store, svc Syncer) http.Handler {
	r := chi.NewRouter()

	r.Use(zerologMiddleware)
	r.Use(middleware.Recoverer)
	// A sync call may spend the full dial plus query timeout against a slow
	// legacy server before reporting failure.
	r.Use(middleware.Timeout(2 * time.Minute))

	h := &adminHandler{store: st, sync: svc}

	r.Get("/healthz", handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/test-connection", h.TestConnection)

		r.Route("/external-databases", func(r chi.Router) {
			r.Get("/", h.ListConfigs)
			r.Post("/", h.CreateConfig)
			r.Put("/{id}", h.UpdateConfig)
			r.Delete("/{id}", h.DeleteConfig)
			r.Post("/{id}/activate", h.ActivateConfig)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/products-now", h.SyncNow(svc.SyncProducts))
			r.Post("/customers-now", h.SyncNow(svc.SyncCustomers))
			r.Post("/payment-methods-now", h.SyncNow(svc.SyncPaymentMethods))
			r.Get("/runs", h.ListRuns)
		})

		r.Route("/export", func(r chi.Router) {
			r.Get("/products.xlsx", h.ExportProducts)
			r.Get("/customers.xlsx", h.ExportCustomers)
		})
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
