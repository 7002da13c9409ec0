package testutil

import (
	"context"
	"net/http"
	"time"

	id "attestry/pkg/domain"
	"attestry/pkg/requestcontext"
)

// WithActorOrg adds an acting organization to the request context,
// simulating what the auth middleware does for authenticated requests.
// Invalid org IDs are silently ignored.
func WithActorOrg(req *http.Request, orgID string) *http.Request {
	parsed, err := id.ParseOrgID(orgID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithActorOrgID(req.Context(), parsed))
}

// WithRequestID adds a correlation ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// ContextWithActor returns a context carrying the acting organization, for
// service tests that bypass HTTP.
func ContextWithActor(orgID id.OrgID) context.Context {
	return requestcontext.WithActorOrgID(context.Background(), orgID)
}

// ContextWithTime returns a context pinned to a fixed clock so timestamps
// written by the code under test are deterministic.
func ContextWithTime(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}
