package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Redis key prefix for signed-out sessions
const revokedSessionKeyPrefix = "revoked:session:"

// RedisStore is the revocation list shared by every instance. Keys expire
// with the session they revoke.
type RedisStore struct {
	client   *redis.Client
	duration prometheus.Histogram
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithLatencyHistogram records lookup latency in milliseconds.
func WithLatencyHistogram(h prometheus.Histogram) RedisOption {
	return func(s *RedisStore) {
		s.duration = h
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	if sessionID == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	return s.client.Set(ctx, revokedSessionKeyPrefix+sessionID, "1", ttl).Err()
}

func (s *RedisStore) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	if s.duration != nil {
		start := time.Now()
		defer func() {
			s.duration.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
		}()
	}
	if sessionID == "" {
		return false, nil
	}
	_, err := s.client.Get(ctx, revokedSessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
