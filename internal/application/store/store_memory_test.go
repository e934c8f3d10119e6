package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"childminder/internal/application/models"
	id "childminder/pkg/domain"
	"childminder/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) TestCreateAndFind() {
	app := models.NewApplication(id.NewApplicationID(), id.NewUserID(), s.now)
	s.Require().NoError(s.store.Create(s.ctx, app))

	s.Run("by user", func() {
		got, err := s.store.FindByUser(s.ctx, app.UserID)
		s.Require().NoError(err)
		s.Equal(app.ID, got.ID)
		s.Equal(models.StatusDrafting, got.Status)
	})

	s.Run("second application for user conflicts", func() {
		err := s.store.Create(s.ctx, models.NewApplication(id.NewApplicationID(), app.UserID, s.now))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("returned copies are detached", func() {
		got, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		got.Tasks[models.TaskHealth] = models.TaskCompleted

		again, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(models.TaskNotStarted, again.TaskStatus(models.TaskHealth))
	})

	s.Run("unknown", func() {
		_, err := s.store.FindByID(s.ctx, id.NewApplicationID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.ErrorIs(s.store.Update(s.ctx, models.NewApplication(id.NewApplicationID(), id.NewUserID(), s.now)), sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestListing() {
	old := models.NewApplication(id.NewApplicationID(), id.NewUserID(), s.now.AddDate(0, 0, -40))
	recent := models.NewApplication(id.NewApplicationID(), id.NewUserID(), s.now.AddDate(0, 0, -1))
	submitted := models.NewApplication(id.NewApplicationID(), id.NewUserID(), s.now.AddDate(0, 0, -50))
	submitted.Status = models.StatusSubmitted
	for _, a := range []*models.Application{recent, old, submitted} {
		s.Require().NoError(s.store.Create(s.ctx, a))
	}

	idle, err := s.store.ListIdle(s.ctx, models.StatusDrafting, s.now.AddDate(0, 0, -30))
	s.Require().NoError(err)
	s.Require().Len(idle, 1)
	s.Equal(old.ID, idle[0].ID)

	drafts, err := s.store.ListByStatus(s.ctx, models.StatusDrafting, models.StatusSubmitted)
	s.Require().NoError(err)
	s.Require().Len(drafts, 3)
	s.Equal(submitted.ID, drafts[0].ID)
	s.Equal(recent.ID, drafts[2].ID)
}

func (s *InMemoryStoreSuite) TestSectionsAndDelete() {
	app := models.NewApplication(id.NewApplicationID(), id.NewUserID(), s.now)
	s.Require().NoError(s.store.Create(s.ctx, app))

	_, err := s.store.LoadSection(s.ctx, app.ID, models.TaskHealth)
	s.ErrorIs(err, sentinel.ErrNotFound)

	doc := json.RawMessage(`{"has_conditions":false}`)
	s.Require().NoError(s.store.SaveSection(s.ctx, app.ID, models.TaskHealth, doc, s.now))
	got, err := s.store.LoadSection(s.ctx, app.ID, models.TaskHealth)
	s.Require().NoError(err)
	s.JSONEq(string(doc), string(got))

	s.Require().NoError(s.store.AddHealthChecks(s.ctx, []models.HealthCheck{
		{TokenHash: "h1", ApplicationID: app.ID, AdultID: id.NewAdultID()},
	}))

	s.Require().NoError(s.store.Delete(s.ctx, app.ID))
	_, err = s.store.LoadSection(s.ctx, app.ID, models.TaskHealth)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindHealthCheck(s.ctx, "h1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByUser(s.ctx, app.UserID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestHealthChecks() {
	appID := id.NewApplicationID()
	s.Require().NoError(s.store.AddHealthChecks(s.ctx, []models.HealthCheck{
		{TokenHash: "h1", ApplicationID: appID, AdultID: id.NewAdultID()},
		{TokenHash: "h2", ApplicationID: appID, AdultID: id.NewAdultID()},
	}))
	s.ErrorIs(s.store.AddHealthChecks(s.ctx, []models.HealthCheck{{TokenHash: "h2", ApplicationID: appID}}), sentinel.ErrConflict)

	s.Require().NoError(s.store.CompleteHealthCheck(s.ctx, "h1", s.now))
	s.ErrorIs(s.store.CompleteHealthCheck(s.ctx, "h1", s.now), sentinel.ErrAlreadyUsed)
	s.ErrorIs(s.store.CompleteHealthCheck(s.ctx, "nope", s.now), sentinel.ErrNotFound)

	done, err := s.store.FindHealthCheck(s.ctx, "h1")
	s.Require().NoError(err)
	s.Require().NotNil(done.CompletedAt)
	s.True(s.now.Equal(*done.CompletedAt))

	open, err := s.store.FindHealthCheck(s.ctx, "h2")
	s.Require().NoError(err)
	s.Nil(open.CompletedAt)
}
