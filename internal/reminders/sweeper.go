// Package reminders nudges applicants whose drafts have gone quiet and
// removes drafts that were abandoned.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	appmodels "childminder/internal/application/models"
	"childminder/internal/notify"
	"childminder/internal/platform/config"
	"childminder/internal/reminders/metrics"
	id "childminder/pkg/domain"
	"childminder/pkg/platform/audit"
)

//go:generate mockgen -source=sweeper.go -destination=mocks/mocks.go -package=mocks Contacts

// Store is the application storage the sweep reads and prunes.
type Store interface {
	ListIdle(ctx context.Context, status appmodels.Status, before time.Time) ([]*appmodels.Application, error)
	Update(ctx context.Context, app *appmodels.Application) error
	Delete(ctx context.Context, appID id.ApplicationID) error
}

type Contacts interface {
	ApplicantEmail(ctx context.Context, userID id.UserID) (string, error)
}

// Result counts what one sweep did.
type Result struct {
	Reminded int
	Expired  int
}

type Sweeper struct {
	store     Store
	contacts  Contacts
	notifier  notify.Sender
	cfg       config.ReminderConfig
	templates config.NotifyTemplates
	publicURL string

	logger  *slog.Logger
	auditor audit.Emitter
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Sweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

func WithAuditPublisher(emitter audit.Emitter) Option {
	return func(s *Sweeper) {
		s.auditor = emitter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

func WithTemplates(templates config.NotifyTemplates, publicURL string) Option {
	return func(s *Sweeper) {
		s.templates = templates
		s.publicURL = publicURL
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

func New(store Store, contacts Contacts, notifier notify.Sender, cfg config.ReminderConfig, opts ...Option) (*Sweeper, error) {
	if store == nil || contacts == nil || notifier == nil {
		return nil, errors.New("reminder store, contacts and notifier are required")
	}
	if cfg.ReminderIdle <= 0 || cfg.ExpiryIdle <= cfg.ReminderIdle {
		return nil, fmt.Errorf("expiry idle (%s) must be longer than reminder idle (%s)", cfg.ExpiryIdle, cfg.ReminderIdle)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	s := &Sweeper{
		store:    store,
		contacts: contacts,
		notifier: notifier,
		cfg:      cfg,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			res, err := s.SweepOnce(ctx)
			if err != nil {
				s.metrics.IncSweepFailure()
				s.logger.WarnContext(ctx, "inactivity sweep failed", "error", err)
				continue
			}
			if res.Reminded > 0 || res.Expired > 0 {
				s.logger.InfoContext(ctx, "inactivity sweep", "reminded", res.Reminded, "expired", res.Expired)
			}
		}
	}
}

// SweepOnce expires abandoned drafts first so an application never gets a
// reminder and an expiry notice in the same sweep.
func (s *Sweeper) SweepOnce(ctx context.Context) (Result, error) {
	var res Result
	now := s.now()

	abandoned, err := s.store.ListIdle(ctx, appmodels.StatusDrafting, now.Add(-s.cfg.ExpiryIdle))
	if err != nil {
		return res, fmt.Errorf("list abandoned drafts: %w", err)
	}
	for _, app := range abandoned {
		if err := s.expire(ctx, app); err != nil {
			return res, err
		}
		res.Expired++
	}

	idle, err := s.store.ListIdle(ctx, appmodels.StatusDrafting, now.Add(-s.cfg.ReminderIdle))
	if err != nil {
		return res, fmt.Errorf("list idle drafts: %w", err)
	}
	for _, app := range idle {
		if reminded(app) {
			continue
		}
		if err := s.remind(ctx, app, now); err != nil {
			return res, err
		}
		res.Reminded++
	}
	return res, nil
}

// reminded reports whether a reminder went out after the applicant's last change.
func reminded(app *appmodels.Application) bool {
	return app.ReminderSentAt != nil && !app.ReminderSentAt.Before(app.UpdatedAt)
}

func (s *Sweeper) remind(ctx context.Context, app *appmodels.Application, now time.Time) error {
	address, err := s.contacts.ApplicantEmail(ctx, app.UserID)
	if err != nil {
		return fmt.Errorf("resolve applicant email: %w", err)
	}
	deadline := app.UpdatedAt.Add(s.cfg.ExpiryIdle)
	if _, err := s.notifier.SendEmail(ctx, notify.Message{
		TemplateID: s.templates.InactiveReminder,
		To:         address,
		Personalisation: map[string]string{
			"link":       s.publicURL,
			"expires_on": deadline.Format("2 January 2006"),
		},
		Reference: app.ID.String(),
	}); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	// the reminder must not count as activity, so UpdatedAt is left alone
	app.ReminderSentAt = &now
	if err := s.store.Update(ctx, app); err != nil {
		return fmt.Errorf("record reminder: %w", err)
	}
	s.metrics.IncReminderSent()
	s.emit(ctx, app, audit.EventReminderSent)
	return nil
}

func (s *Sweeper) expire(ctx context.Context, app *appmodels.Application) error {
	if err := s.store.Delete(ctx, app.ID); err != nil {
		return fmt.Errorf("delete abandoned draft: %w", err)
	}
	s.metrics.IncExpired()
	s.emit(ctx, app, audit.EventApplicationExpired)

	address, err := s.contacts.ApplicantEmail(ctx, app.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "expired draft has no applicant email", "error", err, "application_id", app.ID.String())
		return nil
	}
	if _, err := s.notifier.SendEmail(ctx, notify.Message{
		TemplateID: s.templates.ApplicationExpiry,
		To:         address,
		Personalisation: map[string]string{
			"link": s.publicURL,
		},
		Reference: app.ID.String(),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to send expiry email", "error", err, "application_id", app.ID.String())
	}
	return nil
}

func (s *Sweeper) emit(ctx context.Context, app *appmodels.Application, event audit.AuditEvent) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:        string(event),
		UserID:        app.UserID,
		ApplicationID: app.ID,
		Subject:       app.ID.String(),
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to audit inactivity sweep", "error", err, "application_id", app.ID.String())
	}
}
