package memory

import (
	"context"
	"sync"

	id "awardregistry/pkg/domain"
	audit "awardregistry/pkg/platform/audit"
)

// InMemoryStore keeps events in emission order with a per-company index.
type InMemoryStore struct {
	mu        sync.RWMutex
	events    []audit.Event
	byCompany map[id.CompanyID][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byCompany: make(map[id.CompanyID][]int)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.byCompany = make(map[id.CompanyID][]int)
}

func (s *InMemoryStore) Append(ctx context.Context, event audit.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	if !event.CompanyID.IsNil() {
		s.byCompany[event.CompanyID] = append(s.byCompany[event.CompanyID], len(s.events)-1)
	}
	return nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events...), nil
}

func (s *InMemoryStore) ListByCompany(_ context.Context, companyID id.CompanyID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.byCompany[companyID]
	events := make([]audit.Event, 0, len(idx))
	for _, i := range idx {
		events = append(events, s.events[i])
	}
	return events, nil
}

// ListRecent returns at most limit of the newest events, oldest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := max(len(s.events)-limit, 0)
	return append([]audit.Event{}, s.events[start:]...), nil
}
