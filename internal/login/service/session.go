package service

import (
	"context"
	"errors"
	"time"

	"childminder/internal/login/models"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/audit"
	"childminder/pkg/platform/sentinel"
	"childminder/pkg/requestcontext"
)

// startSession issues a signed session bound to the applicant's application.
func (s *Service) startSession(ctx context.Context, user *models.User, now time.Time) (*models.SessionResult, error) {
	appID, err := s.apps.EnsureForUser(ctx, user.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	sessionID := id.NewSessionID()
	token, err := s.tokens.IssueSession(user.ID, sessionID, appID, now, s.cfg.SessionTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session")
	}

	s.metrics.IncSessionCreated()
	_ = s.emit(ctx, audit.Event{
		Action:        string(audit.EventSessionCreated),
		UserID:        user.ID,
		ApplicationID: appID,
	})
	s.logger.InfoContext(ctx, "applicant signed in",
		"user_id", user.ID.String(),
		"application_id", appID.String(),
		"device", user.LastDevice,
	)

	next := PageTaskList
	if user.Mobile == "" {
		next = PageLoginDetails
	}
	return &models.SessionResult{
		SessionToken:  token,
		SessionID:     sessionID,
		ApplicationID: appID,
		ExpiresAt:     now.Add(s.cfg.SessionTTL),
		Next:          next,
	}, nil
}

// Logout revokes the session until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, userID id.UserID, sessionID id.SessionID) error {
	if sessionID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "session ID required")
	}
	if err := s.revocations.RevokeSession(ctx, sessionID.String(), s.cfg.SessionTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign out")
	}
	s.metrics.IncSessionRevoked()
	_ = s.emit(ctx, audit.Event{Action: string(audit.EventSessionRevoked), UserID: userID})
	return nil
}

// IsSessionRevoked satisfies the session middleware.
func (s *Service) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	return s.revocations.IsSessionRevoked(ctx, sessionID)
}

func (s *Service) LoginDetails(ctx context.Context, userID id.UserID) (*models.LoginDetails, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.LoginDetails{
		Email:           user.Email,
		Mobile:          user.Mobile,
		AdditionalPhone: user.AdditionalPhone,
	}, nil
}

// SaveLoginDetails records the email address and phone numbers and completes the login details task.
func (s *Service) SaveLoginDetails(ctx context.Context, userID id.UserID, appID id.ApplicationID, req *models.LoginDetailsRequest) (*models.SaveResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Email = req.Email
	user.Mobile = req.Mobile
	user.AdditionalPhone = req.AdditionalPhone
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account already uses this email address")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save account")
	}
	if err := s.apps.CompleteLoginDetails(ctx, appID); err != nil {
		return nil, err
	}
	return &models.SaveResult{Next: PageTypeOfChildcare}, nil
}
