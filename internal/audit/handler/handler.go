// Package handler exposes the per-degree audit trail read endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attestry/internal/audit"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/httputil"
)

// Service defines the interface for audit trail queries.
type Service interface {
	QueryByDegree(ctx context.Context, degreeID id.DegreeID) ([]audit.Event, error)
}

// Handler wires the audit trail endpoint.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an audit handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the audit endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/degrees/{degreeID}/audit", h.HandleQuery)
}

// HandleQuery handles GET /degrees/{degreeID}/audit. Events come back
// newest first; a degree with no trail yields an empty list, not a 404.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	degreeID, err := id.ParseDegreeID(chi.URLParam(r, "degreeID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.QueryByDegree(r.Context(), degreeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, QueryResponse{Events: events})
}

// QueryResponse is the HTTP response for GET /degrees/{degreeID}/audit.
type QueryResponse struct {
	Events []audit.Event `json:"events"`
}
