// Package handler wires the organization directory endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attestry/internal/organization/models"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
	"attestry/pkg/platform/httputil"
	"attestry/pkg/requestcontext"
)

// Service defines the interface for directory operations.
type Service interface {
	Register(ctx context.Context, name string, stake int64) (*models.Organization, error)
	Approve(ctx context.Context, orgID id.OrgID, actorOrgID id.OrgID) (*models.Organization, error)
	Suspend(ctx context.Context, orgID id.OrgID, actorOrgID id.OrgID) (*models.Organization, error)
	Reinstate(ctx context.Context, orgID id.OrgID, actorOrgID id.OrgID) (*models.Organization, error)
	Blacklist(ctx context.Context, orgID id.OrgID, reason string, actorOrgID id.OrgID) (*models.Organization, error)
	Get(ctx context.Context, orgID id.OrgID) (*models.Organization, error)
	List(ctx context.Context) ([]*models.Organization, error)
}

// Handler wires directory endpoints to the organization service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an organization handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated directory endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/organizations", h.HandleRegister)
	r.Get("/organizations", h.HandleList)
	r.Get("/organizations/{orgID}", h.HandleGet)
}

// RegisterAdmin mounts the authority-only lifecycle endpoints. The router
// must run authentication middleware before these.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/organizations/{orgID}/approve", h.HandleApprove)
	r.Post("/organizations/{orgID}/suspend", h.HandleSuspend)
	r.Post("/organizations/{orgID}/reinstate", h.HandleReinstate)
	r.Post("/organizations/{orgID}/blacklist", h.HandleBlacklist)
}

// HandleRegister handles POST /organizations.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	org, err := h.service.Register(ctx, req.Name, req.Stake)
	if err != nil {
		h.logger.WarnContext(ctx, "organization registration rejected",
			"request_id", requestID,
			"name", req.Name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromOrganization(org))
}

// HandleGet handles GET /organizations/{orgID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID, err := id.ParseOrgID(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	org, err := h.service.Get(ctx, orgID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOrganization(org))
}

// HandleList handles GET /organizations.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]*OrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, FromOrganization(org))
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Organizations: out})
}

// HandleApprove handles POST /organizations/{orgID}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approved", func(ctx context.Context, orgID, actor id.OrgID) (*models.Organization, error) {
		return h.service.Approve(ctx, orgID, actor)
	})
}

// HandleSuspend handles POST /organizations/{orgID}/suspend.
func (h *Handler) HandleSuspend(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "suspended", func(ctx context.Context, orgID, actor id.OrgID) (*models.Organization, error) {
		return h.service.Suspend(ctx, orgID, actor)
	})
}

// HandleReinstate handles POST /organizations/{orgID}/reinstate.
func (h *Handler) HandleReinstate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reinstated", func(ctx context.Context, orgID, actor id.OrgID) (*models.Organization, error) {
		return h.service.Reinstate(ctx, orgID, actor)
	})
}

// HandleBlacklist handles POST /organizations/{orgID}/blacklist.
func (h *Handler) HandleBlacklist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor := requestcontext.ActorOrgID(ctx)
	if actor.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	orgID, err := id.ParseOrgID(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[BlacklistRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	org, err := h.service.Blacklist(ctx, orgID, req.Reason, actor)
	if err != nil {
		h.logger.WarnContext(ctx, "organization blacklist rejected",
			"request_id", requestID,
			"org_id", orgID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOrganization(org))
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, verb string,
	op func(ctx context.Context, orgID, actor id.OrgID) (*models.Organization, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	actor := requestcontext.ActorOrgID(ctx)
	if actor.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	orgID, err := id.ParseOrgID(chi.URLParam(r, "orgID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	org, err := op(ctx, orgID, actor)
	if err != nil {
		h.logger.WarnContext(ctx, "organization transition rejected",
			"request_id", requestID,
			"org_id", orgID,
			"transition", verb,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOrganization(org))
}
