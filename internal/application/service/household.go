package service

import (
	"context"
	"errors"
	"slices"

	"golang.org/x/sync/errgroup"

	"childminder/internal/application/models"
	"childminder/internal/notify"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/audit"
	"childminder/pkg/platform/sentinel"
	"childminder/pkg/requestcontext"
)

// maxParallelEmails bounds concurrent Notify calls for one household.
const maxParallelEmails = 4

type pendingCheck struct {
	adult models.Adult
	token string
}

// prepareHealthChecks issues a questionnaire link for every adult not yet sent
// one. Adults stay NOT_SENT until Notify accepts their email, so a failed send
// is retried the next time the household is saved.
func (s *Service) prepareHealthChecks(ppl *models.PeopleInHome) ([]pendingCheck, error) {
	var out []pendingCheck
	for _, a := range ppl.Adults {
		if a.HealthCheck != models.HealthCheckNotSent {
			continue
		}
		token, err := s.newToken()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create health check link")
		}
		out = append(out, pendingCheck{adult: a, token: token})
	}
	return out, nil
}

func (s *Service) storeHealthChecks(ctx context.Context, appID id.ApplicationID, pending []pendingCheck) error {
	checks := make([]models.HealthCheck, len(pending))
	for i, p := range pending {
		checks[i] = models.HealthCheck{
			TokenHash:     hashToken(p.token),
			ApplicationID: appID,
			AdultID:       p.adult.ID,
		}
	}
	if err := s.store.AddHealthChecks(ctx, checks); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save health checks")
	}
	return nil
}

// sendHealthChecks emails each adult their link and marks the ones Notify
// accepted as SENT. Failures are logged and the adult stays NOT_SENT.
func (s *Service) sendHealthChecks(ctx context.Context, app *models.Application, pending []pendingCheck) {
	sent := make([]bool, len(pending))
	var g errgroup.Group
	g.SetLimit(maxParallelEmails)
	for i, p := range pending {
		g.Go(func() error {
			_, err := s.notifier.SendEmail(ctx, notify.Message{
				TemplateID: s.templates.AdultHealthCheck,
				To:         p.adult.Email,
				Personalisation: map[string]string{
					"first_name": p.adult.FirstName,
					"link":       s.publicURL + "/health-check/" + p.token,
				},
				Reference: p.adult.ID.String(),
			})
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to send health check email",
					"error", err,
					"application_id", app.ID.String(),
					"adult_id", p.adult.ID.String(),
					"request_id", requestcontext.RequestID(ctx),
				)
				return nil
			}
			sent[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var accepted []id.AdultID
	for i, ok := range sent {
		if ok {
			accepted = append(accepted, pending[i].adult.ID)
		}
	}
	if len(accepted) == 0 {
		return
	}
	if err := s.markHealthChecksSent(ctx, app.ID, accepted); err != nil {
		s.logger.ErrorContext(ctx, "failed to record health check emails",
			"error", err,
			"application_id", app.ID.String(),
		)
	}
	s.metrics.AddHealthChecksSent(len(accepted))
	_ = s.emit(ctx, audit.Event{
		Action:        string(audit.EventAdultHealthCheckSent),
		UserID:        app.UserID,
		ApplicationID: app.ID,
	})
}

func (s *Service) markHealthChecksSent(ctx context.Context, appID id.ApplicationID, adults []id.AdultID) error {
	now := requestcontext.Now(ctx)
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		doc, err := s.loadSection(ctx, appID, models.TaskPeopleInHome)
		if err != nil {
			return err
		}
		ppl := doc.(*models.PeopleInHome)
		for i := range ppl.Adults {
			a := &ppl.Adults[i]
			if a.HealthCheck == models.HealthCheckNotSent && slices.Contains(adults, a.ID) {
				a.HealthCheck = models.HealthCheckSent
			}
		}
		return s.saveSection(ctx, appID, ppl, now)
	})
}

// CompleteAdultHealthCheck records an adult's completed questionnaire. The
// household task completes once every adult has done theirs.
func (s *Service) CompleteAdultHealthCheck(ctx context.Context, token string) error {
	now := requestcontext.Now(ctx)
	hash := hashToken(token)
	check, err := s.store.FindHealthCheck(ctx, hash)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "health check link not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load health check")
	}
	if check.CompletedAt != nil {
		return dErrors.New(dErrors.CodeConflict, "health check already completed")
	}

	var app *models.Application
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		err := s.store.CompleteHealthCheck(ctx, hash, now)
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.New(dErrors.CodeConflict, "health check already completed")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to complete health check")
		}
		if app, err = s.load(ctx, check.ApplicationID); err != nil {
			return err
		}
		doc, err := s.loadSection(ctx, app.ID, models.TaskPeopleInHome)
		if err != nil {
			return err
		}
		ppl := doc.(*models.PeopleInHome)
		found := false
		for i := range ppl.Adults {
			if ppl.Adults[i].ID == check.AdultID {
				ppl.Adults[i].HealthCheck = models.HealthCheckCompleted
				found = true
			}
		}
		if !found {
			// adult was removed after the link went out
			return nil
		}
		if err := s.saveSection(ctx, app.ID, ppl, now); err != nil {
			return err
		}
		if app.TaskStatus(models.TaskPeopleInHome) == models.TaskWaiting && len(ppl.PendingHealthChecks()) == 0 {
			app.Tasks[models.TaskPeopleInHome] = models.TaskCompleted
			app.UpdatedAt = now
			return s.update(ctx, app)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncHealthCheckDone()
	_ = s.emit(ctx, audit.Event{
		Action:        string(audit.EventAdultHealthCheckDone),
		UserID:        app.UserID,
		ApplicationID: app.ID,
		Subject:       check.AdultID.String(),
	})
	return nil
}
