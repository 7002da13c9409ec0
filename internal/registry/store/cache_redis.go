package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attestry_degree_cache_hits_total",
		Help: "Degree lookups served from the redis cache",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attestry_degree_cache_misses_total",
		Help: "Degree lookups that fell through to the backing store",
	})
)

const degreeCacheKeyPrefix = "degree:hash:"

// DegreeStore is the persistence boundary the cache decorates.
type DegreeStore interface {
	CreateIfHashAvailable(ctx context.Context, record *models.DegreeRecord) error
	FindByID(ctx context.Context, degreeID id.DegreeID) (*models.DegreeRecord, error)
	FindByHash(ctx context.Context, hash id.CertificateHash) (*models.DegreeRecord, error)
	Execute(ctx context.Context, degreeID id.DegreeID,
		validate func(*models.DegreeRecord) error,
		apply func(*models.DegreeRecord)) (*models.DegreeRecord, error)
}

// RedisCache is a read-through cache over a DegreeStore keyed by certificate
// hash. Verification traffic is read-heavy on exactly this index, so only
// FindByHash is cached. Mutations pass through and drop the cached entry;
// cache failures degrade to the backing store rather than failing lookups.
type RedisCache struct {
	inner  DegreeStore
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(inner DegreeStore, client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{inner: inner, client: client, ttl: ttl}
}

func (c *RedisCache) CreateIfHashAvailable(ctx context.Context, record *models.DegreeRecord) error {
	return c.inner.CreateIfHashAvailable(ctx, record)
}

func (c *RedisCache) FindByID(ctx context.Context, degreeID id.DegreeID) (*models.DegreeRecord, error) {
	return c.inner.FindByID(ctx, degreeID)
}

func (c *RedisCache) FindByHash(ctx context.Context, hash id.CertificateHash) (*models.DegreeRecord, error) {
	key := degreeCacheKeyPrefix + string(hash)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var record models.DegreeRecord
		if err := json.Unmarshal(raw, &record); err == nil {
			cacheHits.Inc()
			return &record, nil
		}
		// Corrupt entry: fall through and let the refresh overwrite it.
	} else if !errors.Is(err, redis.Nil) {
		// Redis being down must not take lookups with it.
		return c.inner.FindByHash(ctx, hash)
	}

	cacheMisses.Inc()
	record, err := c.inner.FindByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(record); err == nil {
		_ = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	return record, nil
}

// Execute passes through to the backing store and invalidates the cached
// entry afterwards, so a revoke is visible to the next lookup immediately
// rather than after TTL expiry.
func (c *RedisCache) Execute(
	ctx context.Context,
	degreeID id.DegreeID,
	validate func(*models.DegreeRecord) error,
	apply func(*models.DegreeRecord),
) (*models.DegreeRecord, error) {
	record, err := c.inner.Execute(ctx, degreeID, validate, apply)
	if err != nil {
		return nil, err
	}
	_ = c.client.Del(ctx, degreeCacheKeyPrefix+string(record.CertificateHash)).Err()
	return record, nil
}

var _ DegreeStore = (*RedisCache)(nil)
var _ DegreeStore = (*InMemory)(nil)
var _ DegreeStore = (*Postgres)(nil)
