package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/registry-scraper/internal/delivery/http/response"
	"github.com/user/registry-scraper/internal/repository"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

type Handler struct {
	store  repository.CompanyStore
	checks map[string]Check
	logger *zap.Logger
}

// NewHandler creates the API handlers. checks are run by the health endpoint
// in addition to the store ping.
func NewHandler(store repository.CompanyStore, checks map[string]Check, logger *zap.Logger) *Handler {
	all := map[string]Check{"store": store.Ping}
	for name, c := range checks {
		all[name] = c
	}
	return &Handler{store: store, checks: all, logger: logger}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := response.HealthResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Error("health check failed", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = "unhealthy"
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "healthy"
	}

	if resp.Status != "ok" {
		h.writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("failed to read snapshot", zap.Error(err))
		h.writeJSONError(w, "Could not read statistics", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) HandleGetCompany(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if number == "" {
		h.writeJSONError(w, "company number is required", http.StatusBadRequest)
		return
	}

	company, err := h.store.FindByRegistryID(r.Context(), number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeJSONError(w, "Company not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load company", zap.String("registry_id", number), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, company)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
