// Package handler wires the public verification endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"attestry/internal/verification"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/httputil"
	"attestry/pkg/requestcontext"
)

// Service defines the interface for verification decisions.
type Service interface {
	Verify(ctx context.Context, rawHash string, extracted *id.SubjectFields, verifierOrgID id.OrgID) (verification.Result, error)
}

// Handler wires the verification endpoint to the engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the verification endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verify", h.HandleVerify)
}

// HandleVerify handles POST /verify requests. The endpoint is public; when
// the caller authenticated, the acting organization is recorded as the
// verifier on the audit trail.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	verifier := requestcontext.ActorOrgID(ctx)
	result, err := h.service.Verify(ctx, req.CertificateHash, req.ExtractedFields, verifier)
	if err != nil {
		h.logger.WarnContext(ctx, "verification failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification served",
		"request_id", requestID,
		"method", string(result.Method),
		"verified", result.Verified,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}
