package service

import (
	"context"
	"errors"

	"childminder/internal/application/flow"
	"childminder/internal/application/models"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/sentinel"
	"childminder/pkg/requestcontext"
)

// EnsureForUser returns the applicant's application, starting a draft when they have none.
func (s *Service) EnsureForUser(ctx context.Context, userID id.UserID) (id.ApplicationID, error) {
	app, err := s.store.FindByUser(ctx, userID)
	if err == nil {
		return app.ID, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return id.ApplicationID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}

	app = models.NewApplication(id.NewApplicationID(), userID, requestcontext.Now(ctx))
	err = s.store.Create(ctx, app)
	if errors.Is(err, sentinel.ErrConflict) {
		// a concurrent sign in created it first
		existing, findErr := s.store.FindByUser(ctx, userID)
		if findErr != nil {
			return id.ApplicationID{}, dErrors.Wrap(findErr, dErrors.CodeInternal, "failed to load application")
		}
		return existing.ID, nil
	}
	if err != nil {
		return id.ApplicationID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
	}
	s.logger.InfoContext(ctx, "application started",
		"application_id", app.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return app.ID, nil
}

// SecurityFacts returns what the applicant has told us that can verify them
// when SMS is unavailable.
func (s *Service) SecurityFacts(ctx context.Context, userID id.UserID) (models.Facts, error) {
	app, err := s.store.FindByUser(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Facts{}, nil
	}
	if err != nil {
		return models.Facts{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	pd, err := s.personalDetails(ctx, app.ID)
	if err != nil {
		return models.Facts{}, err
	}
	var facts models.Facts
	if dob, ok := pd.DateOfBirth.Time(); ok {
		facts.DateOfBirth = &dob
	}
	if pd.HomeAddress != nil {
		if pc, err := id.ParsePostcode(string(pd.HomeAddress.Postcode)); err == nil {
			facts.Postcode = pc
		}
	}
	return facts, nil
}

// CompleteLoginDetails marks the login details task done once the applicant
// has confirmed their mobile number.
func (s *Service) CompleteLoginDetails(ctx context.Context, appID id.ApplicationID) error {
	app, err := s.load(ctx, appID)
	if err != nil {
		return err
	}
	if app.Editable() != nil {
		return nil
	}
	app.RecordSave(models.TaskLoginDetails, models.TaskCompleted, requestcontext.Now(ctx))
	return s.update(ctx, app)
}

// View returns the application with its task list.
func (s *Service) View(ctx context.Context, appID id.ApplicationID) (*models.View, error) {
	app, err := s.load(ctx, appID)
	if err != nil {
		return nil, err
	}
	return &models.View{
		ID:          app.ID,
		Status:      app.Status,
		Tasks:       app.TaskList(flow.FirstPage),
		RegisterURN: app.RegisterURN,
		SubmittedAt: app.SubmittedAt,
		UpdatedAt:   app.UpdatedAt,
	}, nil
}

// Section returns the saved answers for a task.
func (s *Service) Section(ctx context.Context, appID id.ApplicationID, task models.Task) (models.Section, error) {
	if _, err := s.load(ctx, appID); err != nil {
		return nil, err
	}
	return s.loadSection(ctx, appID, task)
}
