//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"attestry/internal/registry/models"
	"attestry/internal/registry/store"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/sentinel"
	"attestry/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	inner *store.InMemory
	cache *store.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
	s.inner = store.NewInMemory()
	s.cache = store.NewRedisCache(s.inner, s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) newRecord(n int) *models.DegreeRecord {
	hash := id.CertificateHash(fmt.Sprintf("%064x", n))
	return models.NewDegreeRecord(id.NewDegreeID(), hash, id.NewOrgID(), id.SubjectFields{
		StudentName: "Jane Doe",
		DegreeName:  "BSc Computer Science",
	}, time.Now().UTC().Truncate(time.Microsecond))
}

func (s *RedisCacheSuite) TestReadThrough() {
	ctx := context.Background()
	record := s.newRecord(1)
	s.Require().NoError(s.cache.CreateIfHashAvailable(ctx, record))

	// First lookup misses and populates the cache.
	got, err := s.cache.FindByHash(ctx, record.CertificateHash)
	s.Require().NoError(err)
	s.Equal(record.ID, got.ID)

	keys, err := s.redis.Client.Keys(ctx, "degree:hash:*").Result()
	s.Require().NoError(err)
	s.Len(keys, 1)

	// Second lookup is served from redis: mutate the backing store behind the
	// cache's back and observe the stale cached copy.
	_, err = s.inner.Execute(ctx, record.ID,
		func(r *models.DegreeRecord) error { return nil },
		func(r *models.DegreeRecord) { r.ApplyVerification(time.Now().UTC()) },
	)
	s.Require().NoError(err)

	cached, err := s.cache.FindByHash(ctx, record.CertificateHash)
	s.Require().NoError(err)
	s.Equal(int64(0), cached.VerificationCount)
}

func (s *RedisCacheSuite) TestExecuteInvalidatesCachedEntry() {
	ctx := context.Background()
	record := s.newRecord(2)
	s.Require().NoError(s.cache.CreateIfHashAvailable(ctx, record))

	_, err := s.cache.FindByHash(ctx, record.CertificateHash)
	s.Require().NoError(err)

	_, err = s.cache.Execute(ctx, record.ID,
		func(r *models.DegreeRecord) error { return r.CanRevoke() },
		func(r *models.DegreeRecord) { r.ApplyRevocation("fraud", time.Now().UTC()) },
	)
	s.Require().NoError(err)

	// The revoke must be visible immediately, not after TTL expiry.
	got, err := s.cache.FindByHash(ctx, record.CertificateHash)
	s.Require().NoError(err)
	s.True(got.IsRevoked())
}

func (s *RedisCacheSuite) TestMissFallsThroughToBackingStore() {
	ctx := context.Background()

	_, err := s.cache.FindByHash(ctx, id.CertificateHash(fmt.Sprintf("%064x", 404)))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	keys, err := s.redis.Client.Keys(ctx, "degree:hash:*").Result()
	s.Require().NoError(err)
	s.Empty(keys, "a not-found lookup is never cached")
}

func (s *RedisCacheSuite) TestCorruptEntryIsRefreshed() {
	ctx := context.Background()
	record := s.newRecord(3)
	s.Require().NoError(s.cache.CreateIfHashAvailable(ctx, record))

	key := "degree:hash:" + string(record.CertificateHash)
	s.Require().NoError(s.redis.Client.Set(ctx, key, "not json", time.Minute).Err())

	got, err := s.cache.FindByHash(ctx, record.CertificateHash)
	s.Require().NoError(err)
	s.Equal(record.ID, got.ID)
}
