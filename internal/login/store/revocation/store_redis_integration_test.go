//go:build integration

package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childminder/pkg/testutil/containers"
)

func TestRedisStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_revocation_lookup_ms"})
	store := NewRedis(rc.Client, WithLatencyHistogram(h))

	require.NoError(t, store.RevokeSession(ctx, "session-a", time.Minute))

	revoked, err := store.IsSessionRevoked(ctx, "session-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsSessionRevoked(ctx, "session-b")
	require.NoError(t, err)
	assert.False(t, revoked)

	ttl, err := rc.Client.TTL(ctx, revokedSessionKeyPrefix+"session-a").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
