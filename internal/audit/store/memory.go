// Package store provides audit trail persistence.
package store

import (
	"context"
	"sort"
	"sync"

	"attestry/internal/audit"
	id "attestry/pkg/domain"
)

// InMemory keeps per-degree event slices guarded by a RWMutex. Appends copy
// the event in, reads copy out, so callers can never mutate an appended
// entry.
type InMemory struct {
	mu     sync.RWMutex
	events map[id.DegreeID][]audit.Event
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[id.DegreeID][]audit.Event)}
}

func (s *InMemory) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.DegreeID] = append(s.events[event.DegreeID], event)
	return nil
}

// ListByDegree returns the degree's events newest first.
func (s *InMemory) ListByDegree(_ context.Context, degreeID id.DegreeID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := append([]audit.Event{}, s.events[degreeID]...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	return events, nil
}
