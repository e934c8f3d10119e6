package store

import (
	"context"
	"sync"

	"childminder/internal/payment/models"
	id "childminder/pkg/domain"
	"childminder/pkg/platform/sentinel"
)

// InMemoryStore keeps one payment per application.
type InMemoryStore struct {
	mu       sync.RWMutex
	payments map[id.ApplicationID]models.Payment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{payments: make(map[id.ApplicationID]models.Payment)}
}

// Create fails with sentinel.ErrConflict when the application already has a payment.
func (s *InMemoryStore) Create(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.ApplicationID]; ok {
		return sentinel.ErrConflict
	}
	s.payments[p.ApplicationID] = *p
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.ApplicationID]; !ok {
		return sentinel.ErrNotFound
	}
	s.payments[p.ApplicationID] = *p
	return nil
}

func (s *InMemoryStore) FindByApplication(_ context.Context, appID id.ApplicationID) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}
