//go:build integration

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childminder/pkg/testutil/containers"
)

func TestRedisStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	now := time.Now()
	s := NewRedis(rc.Client)
	s.now = func() time.Time { return now }

	for range 2 {
		res, err := s.Allow(ctx, "login:10.0.0.1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		now = now.Add(time.Millisecond)
	}
	res, err := s.Allow(ctx, "login:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	ttl, err := rc.Client.PTTL(ctx, keyPrefix+"login:10.0.0.1").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)

	now = now.Add(2 * time.Minute)
	res, err = s.Allow(ctx, "login:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
