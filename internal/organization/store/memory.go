// Package store provides the persistence implementations for the
// organization directory. The in-memory store is the default for tests and
// single-node runs; the postgres store is the production implementation.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"attestry/internal/organization/models"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/sentinel"
)

// InMemory keeps organizations in maps guarded by a RWMutex. Writes hold the
// exclusive lock across check and mutation, which is what makes
// CreateIfNameAvailable and Execute atomic with respect to concurrent calls.
type InMemory struct {
	mu     sync.RWMutex
	byID   map[id.OrgID]*models.Organization
	byName map[string]id.OrgID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[id.OrgID]*models.Organization),
		byName: make(map[string]id.OrgID),
	}
}

// CreateIfNameAvailable inserts the organization unless its name (compared
// case-insensitively) is already taken. Check and insert happen under one
// lock: of two concurrent registrations with the same name, exactly one wins.
func (s *InMemory) CreateIfNameAvailable(_ context.Context, org *models.Organization) error {
	key := strings.ToLower(org.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	clone := *org
	s.byID[org.ID] = &clone
	s.byName[key] = org.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, orgID id.OrgID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.byID[orgID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *org
	return &clone, nil
}

func (s *InMemory) FindByName(_ context.Context, name string) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orgID, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.byID[orgID]
	return &clone, nil
}

// List returns all organizations ordered by creation time, oldest first.
func (s *InMemory) List(_ context.Context) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orgs := make([]*models.Organization, 0, len(s.byID))
	for _, org := range s.byID {
		clone := *org
		orgs = append(orgs, &clone)
	}
	sort.Slice(orgs, func(i, j int) bool {
		return orgs[i].CreatedAt.Before(orgs[j].CreatedAt)
	})
	return orgs, nil
}

// Execute runs validate-then-mutate atomically: the exclusive lock is held
// across both callbacks, so no concurrent Execute can interleave between
// validation and mutation of the same organization. Returns the updated
// organization on success.
func (s *InMemory) Execute(
	_ context.Context,
	orgID id.OrgID,
	validate func(*models.Organization) error,
	apply func(*models.Organization),
) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	org, ok := s.byID[orgID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(org); err != nil {
		return nil, err
	}
	apply(org)
	clone := *org
	return &clone, nil
}
