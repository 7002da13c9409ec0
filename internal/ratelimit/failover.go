package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"attestry/pkg/platform/circuit"
)

const probeInterval = 5 * time.Second

// Failover routes limiter checks to a primary store (redis) and falls back to
// an in-process store when the primary keeps failing. While the circuit is
// open the primary is probed at most once per probeInterval; enough
// consecutive probe successes close it again.
type Failover struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	logger   *slog.Logger

	mu        sync.Mutex
	lastProbe time.Time
}

func NewFailover(primary, fallback Store, logger *slog.Logger) *Failover {
	return &Failover{
		primary:  primary,
		fallback: fallback,
		breaker:  circuit.New("ratelimit"),
		logger:   logger,
	}
}

// Degraded reports whether checks are currently served from the fallback.
func (f *Failover) Degraded() bool {
	return f.breaker.IsOpen()
}

func (f *Failover) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if f.breaker.IsOpen() && !f.shouldProbe() {
		return f.fallback.Allow(ctx, key, limit, window)
	}

	result, err := f.primary.Allow(ctx, key, limit, window)
	if err == nil {
		if _, change := f.breaker.RecordSuccess(); change.Closed {
			f.logger.Info("rate limiter recovered, primary store back in use")
		}
		return result, nil
	}

	if _, change := f.breaker.RecordFailure(); change.Opened {
		f.logger.Warn("rate limiter degraded to in-memory fallback", "error", err)
	}
	return f.fallback.Allow(ctx, key, limit, window)
}

func (f *Failover) shouldProbe() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastProbe) < probeInterval {
		return false
	}
	f.lastProbe = time.Now()
	return true
}
