package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childminder/internal/payment/models"
	id "childminder/pkg/domain"
	"childminder/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	appID := id.NewApplicationID()
	p := models.NewPayment(appID, 3500, time.Now())

	_, err := s.FindByApplication(ctx, appID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, s.Create(ctx, p))
	assert.ErrorIs(t, s.Create(ctx, models.NewPayment(appID, 100, time.Now())), sentinel.ErrConflict)

	p.MarkPaid("ref-1", time.Now())
	require.NoError(t, s.Update(ctx, p))

	got, err := s.FindByApplication(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.Status)
	assert.Equal(t, "ref-1", got.GatewayReference)

	assert.ErrorIs(t, s.Update(ctx, models.NewPayment(id.NewApplicationID(), 100, time.Now())), sentinel.ErrNotFound)
}
