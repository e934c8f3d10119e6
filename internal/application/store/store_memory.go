package store

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"sync"
	"time"

	"childminder/internal/application/models"
	id "childminder/pkg/domain"
	"childminder/pkg/platform/sentinel"
)

type sectionKey struct {
	app  id.ApplicationID
	task models.Task
}

// InMemoryStore keeps applications, section documents and health checks in maps.
type InMemoryStore struct {
	mu       sync.RWMutex
	apps     map[id.ApplicationID]*models.Application
	byUser   map[id.UserID]id.ApplicationID
	sections map[sectionKey]json.RawMessage
	checks   map[string]models.HealthCheck
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		apps:     make(map[id.ApplicationID]*models.Application),
		byUser:   make(map[id.UserID]id.ApplicationID),
		sections: make(map[sectionKey]json.RawMessage),
		checks:   make(map[string]models.HealthCheck),
	}
}

func clone(a *models.Application) *models.Application {
	cp := *a
	cp.Tasks = maps.Clone(a.Tasks)
	cp.Flags = maps.Clone(a.Flags)
	if cp.Flags == nil {
		cp.Flags = map[models.Task]string{}
	}
	cp.HiddenTasks = slices.Clone(a.HiddenTasks)
	return &cp
}

// Create inserts an application. One application per user: a second is sentinel.ErrConflict.
func (s *InMemoryStore) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byUser[app.UserID]; ok {
		return sentinel.ErrConflict
	}
	s.apps[app.ID] = clone(app)
	s.byUser[app.UserID] = app.ID
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[app.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.apps[app.ID] = clone(app)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, appID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(app), nil
}

func (s *InMemoryStore) FindByUser(ctx context.Context, userID id.UserID) (*models.Application, error) {
	s.mu.RLock()
	appID, ok := s.byUser[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.FindByID(ctx, appID)
}

// ListByStatus returns matching applications, oldest update first.
func (s *InMemoryStore) ListByStatus(_ context.Context, statuses ...models.Status) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Application
	for _, app := range s.apps {
		if slices.Contains(statuses, app.Status) {
			out = append(out, clone(app))
		}
	}
	sortByUpdated(out)
	return out, nil
}

// ListIdle returns applications in status not updated since before.
func (s *InMemoryStore) ListIdle(_ context.Context, status models.Status, before time.Time) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Application
	for _, app := range s.apps {
		if app.Status == status && app.UpdatedAt.Before(before) {
			out = append(out, clone(app))
		}
	}
	sortByUpdated(out)
	return out, nil
}

// Delete removes an application with its sections and health checks.
func (s *InMemoryStore) Delete(_ context.Context, appID id.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.apps, appID)
	delete(s.byUser, app.UserID)
	for k := range s.sections {
		if k.app == appID {
			delete(s.sections, k)
		}
	}
	for k, c := range s.checks {
		if c.ApplicationID == appID {
			delete(s.checks, k)
		}
	}
	return nil
}

func (s *InMemoryStore) LoadSection(_ context.Context, appID id.ApplicationID, task models.Task) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.sections[sectionKey{appID, task}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return slices.Clone(doc), nil
}

func (s *InMemoryStore) SaveSection(_ context.Context, appID id.ApplicationID, task models.Task, doc json.RawMessage, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections[sectionKey{appID, task}] = slices.Clone(doc)
	return nil
}

// AddHealthChecks stores new questionnaire links.
func (s *InMemoryStore) AddHealthChecks(_ context.Context, checks []models.HealthCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range checks {
		if _, ok := s.checks[c.TokenHash]; ok {
			return sentinel.ErrConflict
		}
	}
	for _, c := range checks {
		s.checks[c.TokenHash] = c
	}
	return nil
}

func (s *InMemoryStore) FindHealthCheck(_ context.Context, tokenHash string) (*models.HealthCheck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.checks[tokenHash]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

// CompleteHealthCheck marks a check done. A second completion is sentinel.ErrAlreadyUsed.
func (s *InMemoryStore) CompleteHealthCheck(_ context.Context, tokenHash string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checks[tokenHash]
	if !ok {
		return sentinel.ErrNotFound
	}
	if c.CompletedAt != nil {
		return sentinel.ErrAlreadyUsed
	}
	c.CompletedAt = &at
	s.checks[tokenHash] = c
	return nil
}

func sortByUpdated(apps []*models.Application) {
	slices.SortFunc(apps, func(a, b *models.Application) int {
		return a.UpdatedAt.Compare(b.UpdatedAt)
	})
}
