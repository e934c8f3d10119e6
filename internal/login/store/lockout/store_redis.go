package lockout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"childminder/internal/login/models"
	id "childminder/pkg/domain"
)

const (
	failureKeyPrefix = "login:failures:"
	lockKeyPrefix    = "login:lock:"
)

// RedisStore keeps the failure counter in a key that expires with the window,
// so a new window starts simply by the key disappearing.
type RedisStore struct {
	client *redis.Client
	window time.Duration
}

func NewRedis(client *redis.Client, window time.Duration) *RedisStore {
	return &RedisStore{client: client, window: window}
}

func (s *RedisStore) Get(ctx context.Context, userID id.UserID) (*models.Failures, error) {
	pipe := s.client.Pipeline()
	hget := pipe.HGetAll(ctx, failureKeyPrefix+userID.String())
	lock := pipe.Get(ctx, lockKeyPrefix+userID.String())
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get login failures: %w", err)
	}
	fields := hget.Val()
	lockedUntil, err := parseLock(lock)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 && lockedUntil == nil {
		return nil, nil
	}
	f := &models.Failures{LockedUntil: lockedUntil}
	f.Count, _ = strconv.Atoi(fields["count"])
	if ns, err := strconv.ParseInt(fields["window_start"], 10, 64); err == nil {
		f.WindowStart = time.Unix(0, ns)
	}
	return f, nil
}

func (s *RedisStore) RecordFailure(ctx context.Context, userID id.UserID, now time.Time) (*models.Failures, error) {
	key := failureKeyPrefix + userID.String()
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key, "count", 1)
		pipe.HSetNX(ctx, key, "window_start", strconv.FormatInt(now.UnixNano(), 10))
		pipe.ExpireNX(ctx, key, s.window)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record login failure: %w", err)
	}
	f, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		f = &models.Failures{WindowStart: now}
	}
	f.Count = int(incr.Val())
	return f, nil
}

func (s *RedisStore) Lock(ctx context.Context, userID id.UserID, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	err := s.client.Set(ctx, lockKeyPrefix+userID.String(), strconv.FormatInt(until.UnixNano(), 10), ttl).Err()
	if err != nil {
		return fmt.Errorf("lock login: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userID id.UserID) error {
	if err := s.client.Del(ctx, failureKeyPrefix+userID.String(), lockKeyPrefix+userID.String()).Err(); err != nil {
		return fmt.Errorf("clear login failures: %w", err)
	}
	return nil
}

func parseLock(cmd *redis.StringCmd) (*time.Time, error) {
	raw, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get login lock: %w", err)
	}
	ns, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse login lock: %w", err)
	}
	t := time.Unix(0, ns)
	return &t, nil
}
