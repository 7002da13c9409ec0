package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// Redis is a fixed-window Store shared across instances. Each window is one
// counter keyed by caller and window number; INCR and the expiry run in a
// single pipeline so a crashed client cannot leave an immortal key.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := time.Now()
	windowIndex := now.UnixNano() / int64(window)
	bucketKey := fmt.Sprintf("%s%s:%d", redisKeyPrefix, key, windowIndex)

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, bucketKey)
	pipe.Expire(ctx, bucketKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("ratelimit incr: %w", err)
	}

	resetAt := time.Unix(0, (windowIndex+1)*int64(window))
	used := int(count.Val())
	if used > limit {
		return &Result{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfterSeconds(now, resetAt),
		}, nil
	}
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - used,
		ResetAt:   resetAt,
	}, nil
}
