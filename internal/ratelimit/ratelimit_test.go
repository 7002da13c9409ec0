package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "attestry/pkg/domain"
	"attestry/pkg/requestcontext"
)

func TestInMemory_Allow(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	t.Run("enforces the limit per key", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			result, err := store.Allow(ctx, "ip:10.0.0.1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, result.Allowed)
			assert.Equal(t, 3-i-1, result.Remaining)
		}

		result, err := store.Allow(ctx, "ip:10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, 0, result.Remaining)
		assert.GreaterOrEqual(t, result.RetryAfter, 1)
	})

	t.Run("keys are independent", func(t *testing.T) {
		result, err := store.Allow(ctx, "ip:10.0.0.2", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("window slides", func(t *testing.T) {
		sw := &slidingWindow{window: time.Minute}
		now := time.Now()
		sw.timestamps = []time.Time{now.Add(-2 * time.Minute), now.Add(-30 * time.Second), now}
		sw.expire(now)
		assert.Len(t, sw.timestamps, 2)
	})
}

type erroringStore struct {
	calls int
}

func (s *erroringStore) Allow(context.Context, string, int, time.Duration) (*Result, error) {
	s.calls++
	return nil, errors.New("redis down")
}

func TestFailover(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("serves from fallback while primary fails", func(t *testing.T) {
		primary := &erroringStore{}
		failover := NewFailover(primary, NewInMemory(), logger)

		for i := 0; i < 10; i++ {
			result, err := failover.Allow(ctx, "ip:10.0.0.1", 100, time.Minute)
			require.NoError(t, err)
			assert.True(t, result.Allowed)
		}
		assert.True(t, failover.Degraded())
	})

	t.Run("open circuit stops hammering the primary", func(t *testing.T) {
		primary := &erroringStore{}
		failover := NewFailover(primary, NewInMemory(), logger)

		for i := 0; i < 50; i++ {
			_, err := failover.Allow(ctx, "ip:10.0.0.1", 100, time.Minute)
			require.NoError(t, err)
		}
		// Five failures open the circuit; after that the primary only sees
		// the occasional probe.
		assert.Less(t, primary.calls, 10)
	})

	t.Run("healthy primary is used directly", func(t *testing.T) {
		failover := NewFailover(NewInMemory(), NewInMemory(), logger)
		result, err := failover.Allow(ctx, "ip:10.0.0.1", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.False(t, failover.Degraded())
	})
}

func TestMiddleware_Limit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	doRequest := func(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/verify", nil)
		req.RemoteAddr = remoteAddr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	t.Run("throttles a caller past its limit", func(t *testing.T) {
		m := NewMiddleware(NewInMemory(), 2, time.Minute, slog.Default())
		handler := m.Limit(next)

		for i := 0; i < 2; i++ {
			rr := doRequest(handler, "10.0.0.1:1234")
			assert.Equal(t, http.StatusOK, rr.Code)
		}

		rr := doRequest(handler, "10.0.0.1:1234")
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("Retry-After"))
		assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

		// A different caller is unaffected.
		rr = doRequest(handler, "10.0.0.2:1234")
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("authenticated callers are keyed by organization", func(t *testing.T) {
		m := NewMiddleware(NewInMemory(), 1, time.Minute, slog.Default())
		handler := m.Limit(next)
		orgID := id.NewOrgID()

		send := func(remoteAddr string) int {
			req := httptest.NewRequest(http.MethodPost, "/verify", nil)
			req.RemoteAddr = remoteAddr
			req = req.WithContext(requestcontext.WithActorOrgID(req.Context(), orgID))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			return rr.Code
		}

		assert.Equal(t, http.StatusOK, send("10.0.0.1:1234"))
		// Same org from another address shares the bucket.
		assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.9:1234"))
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		m := NewMiddleware(&erroringStore{}, 1, time.Minute, slog.Default())
		handler := m.Limit(next)

		for i := 0; i < 5; i++ {
			rr := doRequest(handler, "10.0.0.1:1234")
			assert.Equal(t, http.StatusOK, rr.Code)
		}
	})

	t.Run("forwarded header wins over remote addr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/verify", nil)
		req.RemoteAddr = "127.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		assert.Equal(t, "203.0.113.7", clientIP(req))
	})

	t.Run("caller keys cannot alias each other", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/verify", nil)
		req.Header.Set("X-Forwarded-For", "evil:input")
		req.RemoteAddr = "127.0.0.1:1234"
		assert.Equal(t, "ip:evil_input", callerKey(req))
	})
}

func TestRedisKeyShape(t *testing.T) {
	// Window bucketing must be stable within a window and distinct across
	// keys; the key layout is what redis partitions on.
	window := time.Minute
	index := time.Now().UnixNano() / int64(window)
	key := fmt.Sprintf("%s%s:%d", redisKeyPrefix, "ip:10.0.0.1", index)
	assert.Contains(t, key, "ratelimit:ip:10.0.0.1:")
}
