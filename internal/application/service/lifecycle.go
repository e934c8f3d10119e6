package service

import (
	"context"

	"childminder/internal/application/models"
	"childminder/internal/integrations/postcode"
	"childminder/internal/integrations/providers"
	"childminder/internal/integrations/register"
	"childminder/internal/notify"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/audit"
	"childminder/pkg/requestcontext"
)

// PaymentFee returns the registration fee for a draft whose declaration and
// earlier tasks are all complete.
func (s *Service) PaymentFee(ctx context.Context, appID id.ApplicationID) (int, error) {
	app, err := s.load(ctx, appID)
	if err != nil {
		return 0, err
	}
	if app.Status != models.StatusDrafting {
		return 0, dErrors.New(dErrors.CodeConflict, "application has already been submitted")
	}
	if app.TaskStatus(models.TaskDeclaration) != models.TaskCompleted {
		return 0, dErrors.New(dErrors.CodeConflict, "complete the declaration before paying")
	}
	// an earlier task reopened after the declaration was made
	if !app.ReadyForDeclaration() {
		return 0, dErrors.New(dErrors.CodeConflict, "complete every task before paying")
	}
	childcare, err := s.typeOfChildcare(ctx, appID)
	if err != nil {
		return 0, err
	}
	childcare.Derive(requestcontext.Now(ctx))
	if childcare.FeePence == 0 {
		return 0, dErrors.New(dErrors.CodeInvariantViolation, "type of childcare has no fee")
	}
	return childcare.FeePence, nil
}

// Submit moves a paid draft into review, emails the applicant and registers the
// application nationally. Submitting an application already past draft is a no-op.
func (s *Service) Submit(ctx context.Context, appID id.ApplicationID) error {
	now := requestcontext.Now(ctx)
	app, err := s.load(ctx, appID)
	if err != nil {
		return err
	}
	if app.Status != models.StatusDrafting {
		return nil
	}
	if err := app.Submit(now); err != nil {
		return err
	}
	if err := s.update(ctx, app); err != nil {
		return err
	}

	s.metrics.IncSubmission()
	if err := s.emit(ctx, audit.Event{
		Action:        string(audit.EventApplicationSubmitted),
		UserID:        app.UserID,
		ApplicationID: app.ID,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to audit submission", "error", err, "application_id", app.ID.String())
	}

	address, err := s.contacts.ApplicantEmail(ctx, app.UserID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to resolve applicant email", "error", err, "application_id", app.ID.String())
		return nil
	}
	s.sendConfirmation(ctx, app, address)
	s.registerApplication(ctx, app, address)
	return nil
}

func (s *Service) sendConfirmation(ctx context.Context, app *models.Application, address string) {
	_, err := s.notifier.SendEmail(ctx, notify.Message{
		TemplateID: s.templates.PaymentConfirmed,
		To:         address,
		Personalisation: map[string]string{
			"reference": app.ID.String(),
		},
		Reference: app.ID.String(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send confirmation email",
			"error", err,
			"application_id", app.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// registerApplication hands the application to the national register and keeps the URN.
func (s *Service) registerApplication(ctx context.Context, app *models.Application, address string) {
	fail := func(err error) {
		s.metrics.IncRegistrationFailure()
		s.logger.ErrorContext(ctx, "failed to register application",
			"error", err,
			"application_id", app.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	personal, err := s.personalDetails(ctx, app.ID)
	if err != nil {
		fail(err)
		return
	}
	childcare, err := s.typeOfChildcare(ctx, app.ID)
	if err != nil {
		fail(err)
		return
	}
	childcare.Derive(*app.SubmittedAt)
	submission := register.Submission{
		ApplicationID: app.ID,
		FirstName:     personal.FirstName,
		LastName:      personal.LastName,
		DateOfBirth:   string(personal.DateOfBirth),
		Email:         address,
		SubmittedAt:   *app.SubmittedAt,
	}
	if personal.HomeAddress != nil {
		submission.Postcode = personal.HomeAddress.Postcode.String()
	}
	for _, r := range childcare.Registers {
		submission.Registers = append(submission.Registers, string(r))
	}

	urn, err := s.register.Submit(ctx, submission)
	if err != nil {
		fail(err)
		return
	}
	app.RegisterURN = urn
	if err := s.update(ctx, app); err != nil {
		fail(err)
		return
	}
	_ = s.emit(ctx, audit.Event{
		Action:        string(audit.EventApplicationRegistered),
		UserID:        app.UserID,
		ApplicationID: app.ID,
		Reason:        urn,
	})
}

// Resubmit returns an application to review after the applicant has answered
// every flag. Payment is never taken again.
func (s *Service) Resubmit(ctx context.Context, appID id.ApplicationID) (*models.View, error) {
	app, err := s.load(ctx, appID)
	if err != nil {
		return nil, err
	}
	if err := app.Resubmit(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.update(ctx, app); err != nil {
		return nil, err
	}
	s.metrics.IncResubmission()
	_ = s.emit(ctx, audit.Event{
		Action:        string(audit.EventApplicationResubmitted),
		UserID:        app.UserID,
		ApplicationID: app.ID,
	})
	return s.View(ctx, appID)
}

// FindAddresses looks up the delivery points for a postcode.
func (s *Service) FindAddresses(ctx context.Context, raw string) ([]postcode.Address, error) {
	pc, err := id.ParsePostcode(raw)
	if err != nil {
		return nil, dErrors.Validation(map[string]string{"postcode": "Please enter a valid postcode"})
	}
	addresses, err := s.addresses.Lookup(ctx, pc)
	if err != nil {
		return nil, providers.ToDomain(err, "failed to look up postcode")
	}
	return addresses, nil
}
