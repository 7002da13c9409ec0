// Package ratelimit throttles the public verification surface. Limits are
// tracked per caller, keyed by acting organization when the request is
// authenticated and by client IP otherwise.
package ratelimit

import (
	"context"
	"strings"
	"time"
)

// Result is the outcome of one limiter check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

// Store tracks request counts per key. Allow consumes one slot when the key
// is under its limit.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// sanitizeKeySegment escapes the key delimiter so a caller-controlled
// identifier containing ':' cannot alias an adjacent bucket.
func sanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
