package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"attestry/pkg/platform/httputil"
	"attestry/pkg/requestcontext"
)

// Middleware enforces per-caller limits on the endpoints it wraps.
type Middleware struct {
	store  Store
	limit  int
	window time.Duration
	logger *slog.Logger
}

func NewMiddleware(store Store, limit int, window time.Duration, logger *slog.Logger) *Middleware {
	return &Middleware{store: store, limit: limit, window: window, logger: logger}
}

// Limit wraps a handler with the configured per-caller limit. A failing
// limiter fails open: throttling is protection, not a gate the service
// should die behind.
func (m *Middleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		result, err := m.store.Allow(ctx, callerKey(r), m.limit, m.window)
		if err != nil {
			m.logger.ErrorContext(ctx, "rate limit check failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		if degraded, ok := m.store.(interface{ Degraded() bool }); ok && degraded.Degraded() {
			w.Header().Set("X-RateLimit-Status", "degraded")
		}

		if !result.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":       "rate_limit_exceeded",
				"message":     "too many requests, try again later",
				"retry_after": result.RetryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// callerKey identifies the caller: the acting organization when
// authenticated, the client IP otherwise.
func callerKey(r *http.Request) string {
	if actor := requestcontext.ActorOrgID(r.Context()); !actor.IsNil() {
		return "org:" + actor.String()
	}
	return "ip:" + sanitizeKeySegment(clientIP(r))
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
