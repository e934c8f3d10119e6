package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"childminder/internal/login/models"
	"childminder/internal/platform/postgres"
	id "childminder/pkg/domain"
	"childminder/pkg/platform/sentinel"
	txcontext "childminder/pkg/platform/tx"
)

// PostgresStore persists users in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, email, mobile, additional_phone, link_hash, link_expires_at,
	link_requests, link_window_start, sms_code_hash, sms_code_expires_at,
	sms_resend_attempts, sms_resend_window_start, last_device, device_fingerprint,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, u *models.User) error {
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		userArgs(u)...,
	)
	if postgres.IsUniqueViolation(err, "users_email_key") {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, u *models.User) error {
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE users SET
			email = $2, mobile = $3, additional_phone = $4, link_hash = $5, link_expires_at = $6,
			link_requests = $7, link_window_start = $8, sms_code_hash = $9, sms_code_expires_at = $10,
			sms_resend_attempts = $11, sms_resend_window_start = $12, last_device = $13,
			device_fingerprint = $14, created_at = $15, updated_at = $16
		WHERE id = $1`,
		userArgs(u)...,
	)
	if postgres.IsUniqueViolation(err, "users_email_key") {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(userID))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `WHERE email = $1`, email)
}

func (s *PostgresStore) FindByLinkHash(ctx context.Context, hash string) (*models.User, error) {
	if hash == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findOne(ctx, `WHERE link_hash = $1`, hash)
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	row := txcontext.Pick(ctx, s.db).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func userArgs(u *models.User) []any {
	return []any{
		uuid.UUID(u.ID), u.Email, u.Mobile, u.AdditionalPhone, nullString(u.LinkHash), u.LinkExpiresAt,
		u.LinkRequests, u.LinkWindowStart, u.SMSCodeHash, u.SMSCodeExpiresAt,
		u.SMSResendAttempts, u.SMSResendWindowStart, u.LastDevice, u.DeviceFingerprint,
		u.CreatedAt, u.UpdatedAt,
	}
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u        models.User
		rawID    uuid.UUID
		linkHash sql.NullString
	)
	err := row.Scan(
		&rawID, &u.Email, &u.Mobile, &u.AdditionalPhone, &linkHash, &u.LinkExpiresAt,
		&u.LinkRequests, &u.LinkWindowStart, &u.SMSCodeHash, &u.SMSCodeExpiresAt,
		&u.SMSResendAttempts, &u.SMSResendWindowStart, &u.LastDevice, &u.DeviceFingerprint,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.ID = id.UserID(rawID)
	u.LinkHash = linkHash.String
	return &u, nil
}

// nullString keeps the partial unique index on link_hash free of empty strings.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
