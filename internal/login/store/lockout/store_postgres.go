package lockout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"childminder/internal/login/models"
	id "childminder/pkg/domain"
)

// PostgresStore persists lockout records. Pure I/O: lock decisions live in the service.
type PostgresStore struct {
	db     *sql.DB
	window time.Duration
}

func NewPostgres(db *sql.DB, window time.Duration) *PostgresStore {
	return &PostgresStore{db: db, window: window}
}

func (s *PostgresStore) Get(ctx context.Context, userID id.UserID) (*models.Failures, error) {
	record, err := scanFailures(s.db.QueryRowContext(ctx, `
		SELECT failure_count, window_start, locked_until
		FROM login_failures
		WHERE user_id = $1`, uuid.UUID(userID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get login failures: %w", err)
	}
	return record, nil
}

// RecordFailure increments atomically so concurrent wrong codes cannot slip past the threshold.
func (s *PostgresStore) RecordFailure(ctx context.Context, userID id.UserID, now time.Time) (*models.Failures, error) {
	record, err := scanFailures(s.db.QueryRowContext(ctx, `
		INSERT INTO login_failures (user_id, failure_count, window_start)
		VALUES ($1, 1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			failure_count = CASE
				WHEN login_failures.window_start <= $2 - make_interval(secs => $3) THEN 1
				ELSE login_failures.failure_count + 1
			END,
			window_start = CASE
				WHEN login_failures.window_start <= $2 - make_interval(secs => $3) THEN $2
				ELSE login_failures.window_start
			END
		RETURNING failure_count, window_start, locked_until`,
		uuid.UUID(userID), now, s.window.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("record login failure: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Lock(ctx context.Context, userID id.UserID, until time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO login_failures (user_id, failure_count, window_start, locked_until)
		VALUES ($1, 0, $2, $2)
		ON CONFLICT (user_id) DO UPDATE SET locked_until = EXCLUDED.locked_until`,
		uuid.UUID(userID), until)
	if err != nil {
		return fmt.Errorf("lock login: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, userID id.UserID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM login_failures WHERE user_id = $1`, uuid.UUID(userID)); err != nil {
		return fmt.Errorf("clear login failures: %w", err)
	}
	return nil
}

func scanFailures(row *sql.Row) (*models.Failures, error) {
	var f models.Failures
	if err := row.Scan(&f.Count, &f.WindowStart, &f.LockedUntil); err != nil {
		return nil, err
	}
	return &f, nil
}
