package lockout

import (
	"context"
	"sync"
	"time"

	"childminder/internal/login/models"
	id "childminder/pkg/domain"
)

// InMemoryStore tracks second factor failures per user.
type InMemoryStore struct {
	mu      sync.Mutex
	window  time.Duration
	records map[id.UserID]*models.Failures
}

func NewInMemoryStore(window time.Duration) *InMemoryStore {
	return &InMemoryStore{window: window, records: make(map[id.UserID]*models.Failures)}
}

func (s *InMemoryStore) Get(_ context.Context, userID id.UserID) (*models.Failures, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[userID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

// RecordFailure increments the counter, starting a new window when the old one has elapsed.
func (s *InMemoryStore) RecordFailure(_ context.Context, userID id.UserID, now time.Time) (*models.Failures, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[userID]
	if !ok || now.Sub(r.WindowStart) >= s.window {
		var locked *time.Time
		if ok {
			locked = r.LockedUntil
		}
		r = &models.Failures{WindowStart: now, LockedUntil: locked}
		s.records[userID] = r
	}
	r.Count++
	cp := *r
	return &cp, nil
}

func (s *InMemoryStore) Lock(_ context.Context, userID id.UserID, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[userID]
	if !ok {
		r = &models.Failures{WindowStart: until}
		s.records[userID] = r
	}
	r.LockedUntil = &until
	return nil
}

func (s *InMemoryStore) Clear(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	return nil
}
