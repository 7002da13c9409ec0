// Package handler wires the certificate registry endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
	"attestry/pkg/platform/httputil"
	"attestry/pkg/requestcontext"
)

// Service defines the interface for registry operations.
type Service interface {
	Submit(ctx context.Context, issuerOrgID id.OrgID, rawHash string, subject id.SubjectFields) (id.DegreeID, error)
	Lookup(ctx context.Context, rawHash string) (*models.DegreeRecord, error)
	GetByID(ctx context.Context, degreeID id.DegreeID) (*models.DegreeRecord, error)
	Revoke(ctx context.Context, degreeID id.DegreeID, reason string, actorOrgID id.OrgID) (*models.DegreeRecord, error)
}

// Handler wires degree endpoints to the registry service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a registry handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the read endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/degrees/{degreeID}", h.HandleGet)
	r.Get("/degrees/hash/{hash}", h.HandleLookup)
}

// RegisterAuthenticated mounts the endpoints requiring an acting
// organization: submission (issuer) and revocation (authority).
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Post("/degrees", h.HandleSubmit)
	r.Post("/degrees/{degreeID}/revoke", h.HandleRevoke)
}

// HandleSubmit handles POST /degrees.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	issuer := requestcontext.ActorOrgID(ctx)
	if issuer.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	degreeID, err := h.service.Submit(ctx, issuer, req.CertificateHash, req.Subject)
	if err != nil {
		h.logger.WarnContext(ctx, "degree submission rejected",
			"request_id", requestID,
			"issuer_org_id", issuer,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, SubmitResponse{DegreeID: degreeID.String()})
}

// HandleGet handles GET /degrees/{degreeID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	degreeID, err := id.ParseDegreeID(chi.URLParam(r, "degreeID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.GetByID(r.Context(), degreeID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleLookup handles GET /degrees/hash/{hash}.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Lookup(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleRevoke handles POST /degrees/{degreeID}/revoke.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor := requestcontext.ActorOrgID(ctx)
	if actor.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	degreeID, err := id.ParseDegreeID(chi.URLParam(r, "degreeID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[RevokeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Revoke(ctx, degreeID, req.Reason, actor)
	if err != nil {
		h.logger.WarnContext(ctx, "degree revocation rejected",
			"request_id", requestID,
			"degree_id", degreeID,
			"actor_org_id", actor,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}
