package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"childminder/internal/application/models"
	"childminder/internal/platform/postgres"
	id "childminder/pkg/domain"
	"childminder/pkg/platform/sentinel"
	txcontext "childminder/pkg/platform/tx"
)

// PostgresStore persists applications and their section documents in PostgreSQL.
// Task statuses and reviewer flags are stored as JSONB maps.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const applicationColumns = `id, user_id, status, tasks, flags, hidden_tasks, register_urn,
	reminder_sent_at, created_at, updated_at, submitted_at`

func (s *PostgresStore) Create(ctx context.Context, app *models.Application) error {
	args, err := applicationArgs(app)
	if err != nil {
		return err
	}
	_, err = txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		args...,
	)
	if postgres.IsUniqueViolation(err, "applications_user_key") {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, app *models.Application) error {
	args, err := applicationArgs(app)
	if err != nil {
		return err
	}
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE applications SET
			user_id = $2, status = $3, tasks = $4, flags = $5, hidden_tasks = $6,
			register_urn = $7, reminder_sent_at = $8, created_at = $9, updated_at = $10,
			submitted_at = $11
		WHERE id = $1`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(appID))
}

func (s *PostgresStore) FindByUser(ctx context.Context, userID id.UserID) (*models.Application, error) {
	return s.findOne(ctx, `WHERE user_id = $1`, uuid.UUID(userID))
}

func (s *PostgresStore) ListByStatus(ctx context.Context, statuses ...models.Status) ([]*models.Application, error) {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = string(st)
	}
	return s.findMany(ctx, `WHERE status = ANY($1) ORDER BY updated_at`, pq.Array(names))
}

func (s *PostgresStore) ListIdle(ctx context.Context, status models.Status, before time.Time) ([]*models.Application, error) {
	return s.findMany(ctx, `WHERE status = $1 AND updated_at < $2 ORDER BY updated_at`, string(status), before)
}

// Delete removes an application. Sections and health checks cascade.
func (s *PostgresStore) Delete(ctx context.Context, appID id.ApplicationID) error {
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, uuid.UUID(appID))
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) LoadSection(ctx context.Context, appID id.ApplicationID, task models.Task) (json.RawMessage, error) {
	var doc []byte
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx, `
		SELECT document FROM application_sections WHERE application_id = $1 AND section = $2`,
		uuid.UUID(appID), string(task),
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load section %s: %w", task, err)
	}
	return doc, nil
}

func (s *PostgresStore) SaveSection(ctx context.Context, appID id.ApplicationID, task models.Task, doc json.RawMessage, now time.Time) error {
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO application_sections (application_id, section, document, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (application_id, section)
		DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`,
		uuid.UUID(appID), string(task), []byte(doc), now,
	)
	if err != nil {
		return fmt.Errorf("save section %s: %w", task, err)
	}
	return nil
}

// AddHealthChecks stores new questionnaire links. Callers run it inside the
// transaction that saves the household section.
func (s *PostgresStore) AddHealthChecks(ctx context.Context, checks []models.HealthCheck) error {
	exec := txcontext.Pick(ctx, s.db)
	for _, c := range checks {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO adult_health_checks (token_hash, application_id, adult_id, completed_at)
			VALUES ($1, $2, $3, $4)`,
			c.TokenHash, uuid.UUID(c.ApplicationID), uuid.UUID(c.AdultID), c.CompletedAt,
		)
		if postgres.IsUniqueViolation(err, "adult_health_checks_pkey") {
			return sentinel.ErrConflict
		}
		if err != nil {
			return fmt.Errorf("insert health check: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) FindHealthCheck(ctx context.Context, tokenHash string) (*models.HealthCheck, error) {
	var (
		c              models.HealthCheck
		appID, adultID uuid.UUID
	)
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx, `
		SELECT token_hash, application_id, adult_id, completed_at
		FROM adult_health_checks WHERE token_hash = $1`,
		tokenHash,
	).Scan(&c.TokenHash, &appID, &adultID, &c.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find health check: %w", err)
	}
	c.ApplicationID = id.ApplicationID(appID)
	c.AdultID = id.AdultID(adultID)
	return &c, nil
}

// CompleteHealthCheck stamps completed_at once. A completed check yields sentinel.ErrAlreadyUsed.
func (s *PostgresStore) CompleteHealthCheck(ctx context.Context, tokenHash string, at time.Time) error {
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		UPDATE adult_health_checks SET completed_at = $2
		WHERE token_hash = $1 AND completed_at IS NULL`,
		tokenHash, at,
	)
	if err != nil {
		return fmt.Errorf("complete health check: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}
	if _, err := s.FindHealthCheck(ctx, tokenHash); err != nil {
		return err
	}
	return sentinel.ErrAlreadyUsed
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Application, error) {
	row := txcontext.Pick(ctx, s.db).QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications `+where, arg)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) findMany(ctx context.Context, where string, args ...any) ([]*models.Application, error) {
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func applicationArgs(app *models.Application) ([]any, error) {
	tasks, err := json.Marshal(app.Tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	flags := app.Flags
	if flags == nil {
		flags = map[models.Task]string{}
	}
	rawFlags, err := json.Marshal(flags)
	if err != nil {
		return nil, fmt.Errorf("encode flags: %w", err)
	}
	hidden := make([]string, len(app.HiddenTasks))
	for i, t := range app.HiddenTasks {
		hidden[i] = string(t)
	}
	return []any{
		uuid.UUID(app.ID), uuid.UUID(app.UserID), string(app.Status), tasks, rawFlags,
		pq.Array(hidden), app.RegisterURN, app.ReminderSentAt, app.CreatedAt, app.UpdatedAt,
		app.SubmittedAt,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner) (*models.Application, error) {
	var (
		app           models.Application
		rawID, userID uuid.UUID
		status        string
		tasks, flags  []byte
		hidden        []string
	)
	err := row.Scan(
		&rawID, &userID, &status, &tasks, &flags, pq.Array(&hidden), &app.RegisterURN,
		&app.ReminderSentAt, &app.CreatedAt, &app.UpdatedAt, &app.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tasks, &app.Tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if err := json.Unmarshal(flags, &app.Flags); err != nil {
		return nil, fmt.Errorf("decode flags: %w", err)
	}
	app.ID = id.ApplicationID(rawID)
	app.UserID = id.UserID(userID)
	app.Status = models.Status(status)
	for _, t := range hidden {
		app.HiddenTasks = append(app.HiddenTasks, models.Task(t))
	}
	return &app, nil
}
