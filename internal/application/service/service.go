// Package service runs the application wizard: section saves, task status,
// household health checks and the move from paid draft to review.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"childminder/internal/application/metrics"
	"childminder/internal/application/models"
	"childminder/internal/integrations/dbs"
	"childminder/internal/integrations/postcode"
	"childminder/internal/integrations/register"
	"childminder/internal/notify"
	"childminder/internal/platform/config"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/audit"
	"childminder/pkg/platform/sentinel"
	"childminder/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, app *models.Application) error
	Update(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	FindByUser(ctx context.Context, userID id.UserID) (*models.Application, error)
	LoadSection(ctx context.Context, appID id.ApplicationID, task models.Task) (json.RawMessage, error)
	SaveSection(ctx context.Context, appID id.ApplicationID, task models.Task, doc json.RawMessage, now time.Time) error
	AddHealthChecks(ctx context.Context, checks []models.HealthCheck) error
	FindHealthCheck(ctx context.Context, tokenHash string) (*models.HealthCheck, error)
	CompleteHealthCheck(ctx context.Context, tokenHash string, at time.Time) error
}

// TxRunner runs fn as one unit of work.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type DBSLookup interface {
	Lookup(ctx context.Context, number id.DBSNumber) (*dbs.Certificate, error)
}

type AddressLookup interface {
	Lookup(ctx context.Context, pc id.Postcode) ([]postcode.Address, error)
}

type Register interface {
	Submit(ctx context.Context, s register.Submission) (string, error)
}

// Contacts resolves the applicant's sign in email.
type Contacts interface {
	ApplicantEmail(ctx context.Context, userID id.UserID) (string, error)
}

type Service struct {
	store     Store
	tx        TxRunner
	dbs       DBSLookup
	addresses AddressLookup
	register  Register
	contacts  Contacts
	notifier  notify.Sender

	templates config.NotifyTemplates
	publicURL string

	logger  *slog.Logger
	auditor audit.Emitter
	metrics *metrics.Metrics

	newToken func() (string, error)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(emitter audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = emitter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTx(tx TxRunner) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithTemplates sets the Notify templates and the base URL health check links point at.
func WithTemplates(templates config.NotifyTemplates, publicURL string) Option {
	return func(s *Service) {
		s.templates = templates
		s.publicURL = publicURL
	}
}

// WithTokenGenerator replaces the health check token source.
func WithTokenGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newToken = fn
	}
}

// Integrations bundles the outbound gateways the service calls.
type Integrations struct {
	DBS       DBSLookup
	Addresses AddressLookup
	Register  Register
	Notifier  notify.Sender
	Contacts  Contacts
}

func New(store Store, integrations Integrations, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("application store is required")
	}
	if integrations.DBS == nil || integrations.Addresses == nil || integrations.Register == nil {
		return nil, errors.New("dbs, address and register gateways are required")
	}
	if integrations.Notifier == nil || integrations.Contacts == nil {
		return nil, errors.New("notifier and contacts are required")
	}
	s := &Service{
		store:     store,
		tx:        noTx{},
		dbs:       integrations.DBS,
		addresses: integrations.Addresses,
		register:  integrations.Register,
		contacts:  integrations.Contacts,
		notifier:  integrations.Notifier,
		logger:    slog.Default(),
		newToken:  randomToken,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

type noTx struct{}

func (noTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Service) emit(ctx context.Context, e audit.Event) error {
	if s.auditor == nil {
		return nil
	}
	if e.Subject == "" {
		e.Subject = e.ApplicationID.String()
	}
	e.RequestID = requestcontext.RequestID(ctx)
	return s.auditor.Emit(ctx, e)
}

func (s *Service) load(ctx context.Context, appID id.ApplicationID) (*models.Application, error) {
	app, err := s.store.FindByID(ctx, appID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

func (s *Service) update(ctx context.Context, app *models.Application) error {
	if err := s.store.Update(ctx, app); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save application")
	}
	return nil
}

// loadSection decodes the stored document for task onto a fresh section.
// A section never saved comes back empty.
func (s *Service) loadSection(ctx context.Context, appID id.ApplicationID, task models.Task) (models.Section, error) {
	doc, ok := models.NewSection(task)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "task has no section")
	}
	raw, err := s.store.LoadSection(ctx, appID, task)
	if errors.Is(err, sentinel.ErrNotFound) {
		return doc, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load section")
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stored section is corrupt")
	}
	return doc, nil
}

func (s *Service) saveSection(ctx context.Context, appID id.ApplicationID, doc models.Section, now time.Time) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode section")
	}
	if err := s.store.SaveSection(ctx, appID, doc.Task(), raw, now); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save section")
	}
	return nil
}

func (s *Service) personalDetails(ctx context.Context, appID id.ApplicationID) (*models.PersonalDetails, error) {
	doc, err := s.loadSection(ctx, appID, models.TaskPersonalDetails)
	if err != nil {
		return nil, err
	}
	return doc.(*models.PersonalDetails), nil
}

func (s *Service) typeOfChildcare(ctx context.Context, appID id.ApplicationID) (*models.TypeOfChildcare, error) {
	doc, err := s.loadSection(ctx, appID, models.TaskTypeOfChildcare)
	if err != nil {
		return nil, err
	}
	return doc.(*models.TypeOfChildcare), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
