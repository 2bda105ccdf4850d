package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/gestpos/gestsync/internal/domain"
	"github.com/gestpos/gestsync/internal/store"
)

// adminHandler serves the /api/admin surface.
type adminHandler struct {
	store *store.Store
	sync  Syncer
}

// ────────────────────────────────────────────────────────────────────────────
// POST /api/admin/test-connection
// ────────────────────────────────────────────────────────────────────────────

type testConnectionRequest struct {
	ConfigID string               `json:"configId"`
	Server   string               `json:"server"`
	Database string               `json:"database"`
	Username string               `json:"username"`
	Password string               `json:"password"`
	Options  domain.ConfigOptions `json:"options"`
}

type testConnectionResponse struct {
	Success bool `json:"success"`
}

// TestConnection probes the given connection settings. Either a saved
// configuration ID or inline settings are accepted; the probe itself never
// fails the request, it reports reachability as a boolean.
func (h *adminHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	var req testConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	cfg := &domain.ExternalDBConfig{
		Server:   req.Server,
		Database: req.Database,
		Username: req.Username,
		Password: req.Password,
		Options:  req.Options,
	}
	if req.ConfigID != "" {
		saved, err := h.store.GetConfig(r.Context(), req.ConfigID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "configuration not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to load configuration")
			return
		}
		cfg = saved
	} else if cfg.Server == "" || cfg.Database == "" {
		writeError(w, http.StatusBadRequest, "server and database are required")
		return
	}

	writeJSON(w, http.StatusOK, testConnectionResponse{
		Success: h.sync.TestConnection(r.Context(), cfg),
	})
}

// ────────────────────────────────────────────────────────────────────────────
// /api/admin/external-databases
// ────────────────────────────────────────────────────────────────────────────

type configRequest struct {
	Name     string               `json:"name"`
	Driver   string               `json:"driver"`
	Server   string               `json:"server"`
	Database string               `json:"database"`
	Username string               `json:"username"`
	Password string               `json:"password"`
	Options  domain.ConfigOptions `json:"options"`
}

func (cr *configRequest) validate() string {
	switch {
	case cr.Name == "":
		return "name is required"
	case cr.Server == "":
		return "server is required"
	case cr.Database == "":
		return "database is required"
	}
	return ""
}

func (h *adminHandler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.ListConfigs(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list configs failed")
		writeError(w, http.StatusInternalServerError, "failed to list configurations")
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

// CreateConfig saves a new external database configuration. New
// configurations are always inactive; activation is a separate call.
func (h *adminHandler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.store.CreateConfig(r.Context(), domain.ExternalDBConfig{
		Name:     req.Name,
		Driver:   req.Driver,
		Server:   req.Server,
		Database: req.Database,
		Username: req.Username,
		Password: req.Password,
		Options:  req.Options,
	})
	if err != nil {
		log.Error().Err(err).Msg("create config failed")
		writeError(w, http.StatusInternalServerError, "failed to create configuration")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *adminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	err := h.store.UpdateConfig(r.Context(), domain.ExternalDBConfig{
		ID:       id,
		Name:     req.Name,
		Driver:   req.Driver,
		Server:   req.Server,
		Database: req.Database,
		Username: req.Username,
		Password: req.Password,
		Options:  req.Options,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "configuration not found")
			return
		}
		log.Error().Err(err).Str("id", id).Msg("update config failed")
		writeError(w, http.StatusInternalServerError, "failed to update configuration")
		return
	}

	updated, err := h.store.GetConfig(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reload configuration")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *adminHandler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteConfig(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "configuration not found")
		case errors.Is(err, store.ErrConfigActive):
			writeError(w, http.StatusConflict, "cannot delete the active configuration")
		default:
			log.Error().Err(err).Str("id", id).Msg("delete config failed")
			writeError(w, http.StatusInternalServerError, "failed to delete configuration")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ActivateConfig makes the given configuration the single active one.
func (h *adminHandler) ActivateConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.SetActive(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "configuration not found")
			return
		}
		log.Error().Err(err).Str("id", id).Msg("activate config failed")
		writeError(w, http.StatusInternalServerError, "failed to activate configuration")
		return
	}

	activated, err := h.store.GetConfig(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reload configuration")
		return
	}
	writeJSON(w, http.StatusOK, activated)
}
