package service

import (
	"context"
	"errors"

	"childminder/internal/integrations/providers"
	"childminder/internal/login/device"
	"childminder/internal/login/models"
	"childminder/internal/notify"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/email"
	"childminder/pkg/platform/audit"
	"childminder/pkg/platform/sentinel"
	"childminder/pkg/requestcontext"
)

// RequestLink emails a magic link. The result is the same whether or not the
// address was already registered; new addresses get an account and a draft application.
func (s *Service) RequestLink(ctx context.Context, req *models.RequestLinkRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}
	now := requestcontext.Now(ctx)

	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, sentinel.ErrNotFound) {
		user, err = s.createUser(ctx, req.Email)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	user.RollLinkWindow(now, s.cfg.ResendWindow)
	if user.LinkRequests >= maxLinkEmails {
		s.metrics.IncLinkThrottled()
		s.logFailure(ctx, "link_requests_exhausted", "user_id", user.ID.String())
		_ = s.emit(ctx, audit.Event{
			Action: string(audit.EventLoginLinkRejected),
			UserID: user.ID,
			Email:  email.Mask(user.Email),
			Reason: "throttled",
		})
		return nil
	}

	token, err := s.newLinkToken()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create link")
	}
	expires := now.Add(s.cfg.LinkTTL)
	user.LinkHash = hashToken(token)
	user.LinkExpiresAt = &expires
	user.LinkRequests++
	if err := s.saveUser(ctx, user, now); err != nil {
		return err
	}

	_, err = s.notifier.SendEmail(ctx, notify.Message{
		TemplateID:      s.templates.MagicLink,
		To:              user.Email,
		Personalisation: map[string]string{"link": s.publicURL + "/login/validate/" + token},
		Reference:       user.ID.String(),
	})
	if err != nil {
		return providers.ToDomain(err, "failed to send sign in email")
	}

	s.metrics.IncLinkSent()
	_ = s.emit(ctx, audit.Event{
		Action: string(audit.EventLoginLinkSent),
		UserID: user.ID,
		Email:  email.Mask(user.Email),
	})
	return nil
}

func (s *Service) createUser(ctx context.Context, address string) (*models.User, error) {
	now := requestcontext.Now(ctx)
	user := &models.User{
		ID:        id.NewUserID(),
		Email:     address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race with a concurrent request for the same address.
			return s.users.FindByEmail(ctx, address)
		}
		return nil, err
	}
	if _, err := s.apps.EnsureForUser(ctx, user.ID); err != nil {
		return nil, err
	}
	// Account creation is a compliance event: a failed write aborts the request.
	if err := s.emit(ctx, audit.Event{
		Action: string(audit.EventUserCreated),
		UserID: user.ID,
		Email:  email.Mask(address),
	}); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "applicant account created", "user_id", user.ID.String())
	return user, nil
}

// ValidateLink consumes a magic link. Applicants without a mobile number are
// signed straight in to add one; everyone else is sent an SMS code.
func (s *Service) ValidateLink(ctx context.Context, token string) (*models.LinkResult, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeNotFound, "link not recognised")
	}
	now := requestcontext.Now(ctx)

	user, err := s.users.FindByLinkHash(ctx, hashToken(token))
	if errors.Is(err, sentinel.ErrNotFound) {
		s.logFailure(ctx, "unknown_link")
		_ = s.emit(ctx, audit.Event{Action: string(audit.EventLoginLinkRejected), Reason: "unknown"})
		return nil, dErrors.New(dErrors.CodeNotFound, "link not recognised")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if user.LinkExpired(now) {
		s.logFailure(ctx, "expired_link", "user_id", user.ID.String())
		_ = s.emit(ctx, audit.Event{Action: string(audit.EventLoginLinkRejected), UserID: user.ID, Reason: "expired"})
		return nil, dErrors.New(dErrors.CodeExpired, "this link has expired, request a new one")
	}
	if err := s.checkLock(ctx, user.ID, now); err != nil {
		return nil, err
	}

	user.ConsumeLink()
	ua := requestcontext.UserAgent(ctx)
	user.LastDevice = device.ParseUserAgent(ua)
	user.DeviceFingerprint = device.Fingerprint(ua)

	if user.Mobile == "" {
		if err := s.saveUser(ctx, user, now); err != nil {
			return nil, err
		}
		session, err := s.startSession(ctx, user, now)
		if err != nil {
			return nil, err
		}
		return &models.LinkResult{
			Stage:        models.StageFull,
			SessionToken: session.SessionToken,
			ExpiresAt:    session.ExpiresAt,
			Next:         session.Next,
		}, nil
	}

	if err := s.issueCode(ctx, user, now); err != nil {
		return nil, err
	}
	pending, err := s.tokens.IssuePending(user.ID, now, s.cfg.PendingTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return &models.LinkResult{
		Stage:        models.StageSMS,
		PendingToken: pending,
		ExpiresAt:    now.Add(s.cfg.PendingTTL),
		Next:         PageSecurityCode,
	}, nil
}
