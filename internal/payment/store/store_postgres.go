package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"childminder/internal/payment/models"
	"childminder/internal/platform/postgres"
	id "childminder/pkg/domain"
	"childminder/pkg/platform/sentinel"
	txcontext "childminder/pkg/platform/tx"
)

// PostgresStore persists payments. The unique constraint on application_id
// is what stops two concurrent first attempts from both charging.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const paymentColumns = `id, application_id, order_code, amount_pence, status, attempts,
	gateway_reference, failure_reason, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p *models.Payment) error {
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		paymentArgs(p)...,
	)
	if postgres.IsUniqueViolation(err, "payments_application_key") || postgres.IsUniqueViolation(err, "payments_order_code_key") {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Payment) error {
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE payments SET
			application_id = $2, order_code = $3, amount_pence = $4, status = $5, attempts = $6,
			gateway_reference = $7, failure_reason = $8, created_at = $9, updated_at = $10
		WHERE id = $1`,
		paymentArgs(p)...,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByApplication(ctx context.Context, appID id.ApplicationID) (*models.Payment, error) {
	var (
		p             models.Payment
		rawID, rawApp uuid.UUID
		status        string
	)
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE application_id = $1`, uuid.UUID(appID),
	).Scan(
		&rawID, &rawApp, &p.OrderCode, &p.AmountPence, &status, &p.Attempts,
		&p.GatewayReference, &p.FailureReason, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	p.ID = id.PaymentID(rawID)
	p.ApplicationID = id.ApplicationID(rawApp)
	p.Status = models.Status(status)
	return &p, nil
}

func paymentArgs(p *models.Payment) []any {
	return []any{
		uuid.UUID(p.ID), uuid.UUID(p.ApplicationID), p.OrderCode, p.AmountPence, string(p.Status), p.Attempts,
		p.GatewayReference, p.FailureReason, p.CreatedAt, p.UpdatedAt,
	}
}
