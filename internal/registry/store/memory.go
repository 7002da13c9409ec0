// Package store provides persistence for degree records: an in-memory store
// for tests and single-node runs, a postgres store for production, and a
// redis read-through cache for the verification hot path.
package store

import (
	"context"
	"sync"

	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/sentinel"
)

// InMemory keeps degree records in maps guarded by a RWMutex. The exclusive
// lock spans check and insert in CreateIfHashAvailable, which is what makes
// hash uniqueness hold under concurrent submissions.
type InMemory struct {
	mu     sync.RWMutex
	byID   map[id.DegreeID]*models.DegreeRecord
	byHash map[id.CertificateHash]id.DegreeID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[id.DegreeID]*models.DegreeRecord),
		byHash: make(map[id.CertificateHash]id.DegreeID),
	}
}

// CreateIfHashAvailable inserts the record unless its certificate hash is
// already indexed. Of two concurrent submissions with the same hash exactly
// one succeeds; the loser sees ErrAlreadyUsed, never a silent overwrite.
func (s *InMemory) CreateIfHashAvailable(_ context.Context, record *models.DegreeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byHash[record.CertificateHash]; taken {
		return sentinel.ErrAlreadyUsed
	}
	clone := *record
	s.byID[record.ID] = &clone
	s.byHash[record.CertificateHash] = record.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, degreeID id.DegreeID) (*models.DegreeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.byID[degreeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *InMemory) FindByHash(_ context.Context, hash id.CertificateHash) (*models.DegreeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	degreeID, ok := s.byHash[hash]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.byID[degreeID]
	return &clone, nil
}

// Execute runs validate-then-mutate under the exclusive lock, so concurrent
// revokes and verification bookkeeping on the same degree serialize and
// validation always sees the latest state. Returns the updated record.
func (s *InMemory) Execute(
	_ context.Context,
	degreeID id.DegreeID,
	validate func(*models.DegreeRecord) error,
	apply func(*models.DegreeRecord),
) (*models.DegreeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[degreeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(record); err != nil {
		return nil, err
	}
	apply(record)
	clone := *record
	return &clone, nil
}
