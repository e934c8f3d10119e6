//go:build integration

package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childminder/internal/login/models"
	id "childminder/pkg/domain"
	"childminder/pkg/platform/sentinel"
	"childminder/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := NewPostgres(pg.DB)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	expires := now.Add(time.Hour)
	u := &models.User{
		ID:            id.NewUserID(),
		Email:         "jo@example.com",
		LinkHash:      "hash-1",
		LinkExpiresAt: &expires,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, store.Create(ctx, u))
	assert.ErrorIs(t, store.Create(ctx, &models.User{ID: id.NewUserID(), Email: "jo@example.com", CreatedAt: now, UpdatedAt: now}), sentinel.ErrConflict)

	got, err := store.FindByLinkHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.LinkExpiresAt)
	assert.True(t, expires.Equal(*got.LinkExpiresAt))

	got.ConsumeLink()
	got.Mobile = "07700900000"
	require.NoError(t, store.Update(ctx, got))

	_, err = store.FindByLinkHash(ctx, "hash-1")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	byEmail, err := store.FindByEmail(ctx, "jo@example.com")
	require.NoError(t, err)
	assert.Equal(t, "07700900000", byEmail.Mobile)
	assert.Nil(t, byEmail.LinkExpiresAt)
}
