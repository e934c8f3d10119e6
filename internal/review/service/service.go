// Package service implements the reviewer (ARC) side of an application:
// the queue, flags sent back to the applicant and acceptance.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	appmodels "childminder/internal/application/models"
	"childminder/internal/notify"
	"childminder/internal/review/models"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/audit"
	"childminder/pkg/platform/sentinel"
	"childminder/pkg/requestcontext"
)

// Store is the application storage the reviewer works against.
type Store interface {
	FindByID(ctx context.Context, appID id.ApplicationID) (*appmodels.Application, error)
	Update(ctx context.Context, app *appmodels.Application) error
	ListByStatus(ctx context.Context, statuses ...appmodels.Status) ([]*appmodels.Application, error)
	LoadSection(ctx context.Context, appID id.ApplicationID, task appmodels.Task) (json.RawMessage, error)
}

type Contacts interface {
	ApplicantEmail(ctx context.Context, userID id.UserID) (string, error)
}

var queue = []appmodels.Status{
	appmodels.StatusSubmitted,
	appmodels.StatusARCReview,
	appmodels.StatusFurtherInformation,
}

type Service struct {
	store    Store
	contacts Contacts
	notifier notify.Sender

	furtherInfoTemplate string
	publicURL           string

	logger  *slog.Logger
	auditor audit.Emitter
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

// WithFurtherInfoTemplate sets the Notify template used when a task is flagged.
func WithFurtherInfoTemplate(templateID, publicURL string) Option {
	return func(s *Service) {
		s.furtherInfoTemplate = templateID
		s.publicURL = publicURL
	}
}

func New(store Store, contacts Contacts, notifier notify.Sender, opts ...Option) (*Service, error) {
	if store == nil || contacts == nil || notifier == nil {
		return nil, errors.New("review store, contacts and notifier are required")
	}
	s := &Service{
		store:    store,
		contacts: contacts,
		notifier: notifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// List returns applications awaiting or under review, oldest change first.
func (s *Service) List(ctx context.Context) ([]models.Summary, error) {
	apps, err := s.store.ListByStatus(ctx, queue...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	out := make([]models.Summary, 0, len(apps))
	for _, app := range apps {
		out = append(out, models.NewSummary(app))
	}
	return out, nil
}

// Get returns an application with every saved section.
func (s *Service) Get(ctx context.Context, appID id.ApplicationID) (*models.Detail, error) {
	app, err := s.load(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.Status == appmodels.StatusDrafting {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	sections := make(map[appmodels.Task]json.RawMessage)
	for _, task := range appmodels.Tasks {
		doc, err := s.store.LoadSection(ctx, appID, task)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load section")
		}
		sections[task] = doc
	}
	return &models.Detail{
		Summary:  models.NewSummary(app),
		Tasks:    app.Tasks,
		Flags:    app.Flags,
		Sections: sections,
	}, nil
}

func (s *Service) StartReview(ctx context.Context, appID id.ApplicationID, reviewer string) (*models.Summary, error) {
	app, err := s.load(ctx, appID)
	if err != nil {
		return nil, err
	}
	if err := app.StartReview(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.update(ctx, app); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "review started", "application_id", app.ID.String(), "reviewer", reviewer)
	summary := models.NewSummary(app)
	return &summary, nil
}

// Flag sends a task back to the applicant and emails them.
func (s *Service) Flag(ctx context.Context, appID id.ApplicationID, reviewer string, req *models.FlagRequest) (*models.Summary, error) {
	req.Normalize()
	task, err := req.Validate()
	if err != nil {
		return nil, err
	}
	app, err := s.load(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.IsHidden(task) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "task does not apply to this application")
	}
	if err := app.Flag(task, req.Comment, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.update(ctx, app); err != nil {
		return nil, err
	}
	s.emit(ctx, app, audit.EventTaskFlagged, reviewer, string(task))
	s.notifyApplicant(ctx, app, task)

	summary := models.NewSummary(app)
	return &summary, nil
}

func (s *Service) Accept(ctx context.Context, appID id.ApplicationID, reviewer string) (*models.Summary, error) {
	app, err := s.load(ctx, appID)
	if err != nil {
		return nil, err
	}
	if err := app.Accept(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.update(ctx, app); err != nil {
		return nil, err
	}
	s.emit(ctx, app, audit.EventApplicationAccepted, reviewer, "")
	summary := models.NewSummary(app)
	return &summary, nil
}

func (s *Service) notifyApplicant(ctx context.Context, app *appmodels.Application, task appmodels.Task) {
	address, err := s.contacts.ApplicantEmail(ctx, app.UserID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to resolve applicant email", "error", err, "application_id", app.ID.String())
		return
	}
	_, err = s.notifier.SendEmail(ctx, notify.Message{
		TemplateID: s.furtherInfoTemplate,
		To:         address,
		Personalisation: map[string]string{
			"task": strings.ReplaceAll(string(task), "_", " "),
			"link": s.publicURL + "/application",
		},
		Reference: app.ID.String(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send further information email", "error", err, "application_id", app.ID.String())
	}
}

func (s *Service) load(ctx context.Context, appID id.ApplicationID) (*appmodels.Application, error) {
	app, err := s.store.FindByID(ctx, appID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

func (s *Service) update(ctx context.Context, app *appmodels.Application) error {
	if err := s.store.Update(ctx, app); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save application")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, app *appmodels.Application, event audit.AuditEvent, reviewer, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Action:        string(event),
		UserID:        app.UserID,
		ApplicationID: app.ID,
		Subject:       app.ID.String(),
		Reason:        reason,
		ActorID:       reviewer,
		RequestID:     requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to audit review action", "error", err, "application_id", app.ID.String())
	}
}
