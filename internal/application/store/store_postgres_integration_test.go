//go:build integration

package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childminder/internal/application/models"
	loginmodels "childminder/internal/login/models"
	userstore "childminder/internal/login/store/user"
	id "childminder/pkg/domain"
	"childminder/pkg/platform/sentinel"
	"childminder/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := NewPostgres(pg.DB)
	users := userstore.NewPostgres(pg.DB)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	newApplication := func(t *testing.T, email string) *models.Application {
		t.Helper()
		u := &loginmodels.User{ID: id.NewUserID(), Email: email, CreatedAt: now, UpdatedAt: now}
		require.NoError(t, users.Create(ctx, u))
		app := models.NewApplication(id.NewApplicationID(), u.ID, now)
		require.NoError(t, store.Create(ctx, app))
		return app
	}

	t.Run("round trips tasks flags and hidden tasks", func(t *testing.T) {
		app := newApplication(t, "a@example.com")
		app.RecordSave(models.TaskHealth, models.TaskCompleted, now)
		app.HiddenTasks = []models.Task{models.TaskEarlyYearsTraining}
		app.Status = models.StatusSubmitted
		require.NoError(t, app.Flag(models.TaskHealth, "please add detail", now))
		require.NoError(t, store.Update(ctx, app))

		got, err := store.FindByUser(ctx, app.UserID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFurtherInformation, got.Status)
		assert.Equal(t, models.TaskFlagged, got.TaskStatus(models.TaskHealth))
		assert.Equal(t, "please add detail", got.Flags[models.TaskHealth])
		assert.True(t, got.IsHidden(models.TaskEarlyYearsTraining))

		assert.ErrorIs(t, store.Create(ctx, models.NewApplication(id.NewApplicationID(), app.UserID, now)), sentinel.ErrConflict)
	})

	t.Run("sections upsert", func(t *testing.T) {
		app := newApplication(t, "b@example.com")
		require.NoError(t, store.SaveSection(ctx, app.ID, models.TaskHealth, json.RawMessage(`{"has_conditions":true}`), now))
		require.NoError(t, store.SaveSection(ctx, app.ID, models.TaskHealth, json.RawMessage(`{"has_conditions":false}`), now))
		doc, err := store.LoadSection(ctx, app.ID, models.TaskHealth)
		require.NoError(t, err)
		assert.JSONEq(t, `{"has_conditions":false}`, string(doc))
	})

	t.Run("health checks complete once", func(t *testing.T) {
		app := newApplication(t, "c@example.com")
		require.NoError(t, store.AddHealthChecks(ctx, []models.HealthCheck{
			{TokenHash: "pg-h1", ApplicationID: app.ID, AdultID: id.NewAdultID()},
		}))
		require.NoError(t, store.CompleteHealthCheck(ctx, "pg-h1", now))
		assert.ErrorIs(t, store.CompleteHealthCheck(ctx, "pg-h1", now), sentinel.ErrAlreadyUsed)
		assert.ErrorIs(t, store.CompleteHealthCheck(ctx, "missing", now), sentinel.ErrNotFound)
	})

	t.Run("idle listing and cascade delete", func(t *testing.T) {
		pg.Truncate(t)
		app := newApplication(t, "d@example.com")
		app.UpdatedAt = now.AddDate(0, 0, -31)
		require.NoError(t, store.Update(ctx, app))
		require.NoError(t, store.SaveSection(ctx, app.ID, models.TaskHealth, json.RawMessage(`{}`), now))

		idle, err := store.ListIdle(ctx, models.StatusDrafting, now.AddDate(0, 0, -30))
		require.NoError(t, err)
		require.Len(t, idle, 1)
		assert.Equal(t, app.ID, idle[0].ID)

		require.NoError(t, store.Delete(ctx, app.ID))
		_, err = store.LoadSection(ctx, app.ID, models.TaskHealth)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
