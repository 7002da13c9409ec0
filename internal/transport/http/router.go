// Package httptransport assembles the HTTP surface: middleware chain,
// domain handlers, and operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	audithandler "attestry/internal/audit/handler"
	orghandler "attestry/internal/organization/handler"
	"attestry/internal/platform/middleware"
	"attestry/internal/ratelimit"
	reghandler "attestry/internal/registry/handler"
	verifyhandler "attestry/internal/verification/handler"
)

// Handlers bundles the domain handlers the router mounts.
type Handlers struct {
	Organizations *orghandler.Handler
	Degrees       *reghandler.Handler
	Verification  *verifyhandler.Handler
	Audit         *audithandler.Handler
}

// NewRouter wires all endpoints. Reads and registration are public;
// submissions and lifecycle transitions require an authenticated acting
// organization; verification accepts but does not require one and is the
// only endpoint behind the rate limiter.
func NewRouter(h Handlers, validator middleware.JWTValidator, limiter *ratelimit.Middleware, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(logger))

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		h.Organizations.RegisterPublic(r)
		h.Degrees.RegisterPublic(r)
		h.Audit.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(validator, logger))
		if limiter != nil {
			r.Use(limiter.Limit)
		}
		h.Verification.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		h.Organizations.RegisterAdmin(r)
		h.Degrees.RegisterAuthenticated(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
