package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childminder/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	store := NewInMemoryStore()
	store.now = func() time.Time { return now }

	revoked, err := store.IsSessionRevoked(ctx, "s-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.RevokeSession(ctx, "s-1", time.Hour))
	revoked, err = store.IsSessionRevoked(ctx, "s-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(time.Hour)
	revoked, err = store.IsSessionRevoked(ctx, "s-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entries lapse with the session")

	err = store.RevokeSession(ctx, "s-2", 0)
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)
}
