package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"childminder/internal/integrations/providers"
	"childminder/internal/login/models"
	"childminder/internal/notify"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/audit"
	"childminder/pkg/requestcontext"
)

// issueCode stores a fresh hashed SMS code on user, saves it and texts it.
func (s *Service) issueCode(ctx context.Context, user *models.User, now time.Time) error {
	code, err := s.newCode()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create code")
	}
	expires := now.Add(s.cfg.SMSCodeTTL)
	user.SMSCodeHash = string(hash)
	user.SMSCodeExpiresAt = &expires
	if err := s.saveUser(ctx, user, now); err != nil {
		return err
	}

	_, err = s.notifier.SendSMS(ctx, notify.Message{
		TemplateID:      s.templates.SMSCode,
		To:              user.Mobile,
		Personalisation: map[string]string{"code": code},
		Reference:       user.ID.String(),
	})
	if err != nil {
		return providers.ToDomain(err, "failed to send security code")
	}
	s.metrics.IncCodeSent()
	_ = s.emit(ctx, audit.Event{Action: string(audit.EventSMSCodeSent), UserID: user.ID})
	return nil
}

// ResendCode sends a new SMS code. After MaxSMSResends within the resend
// window the applicant has to answer the security question instead.
func (s *Service) ResendCode(ctx context.Context, pendingToken string) (*models.ResendResult, error) {
	now := requestcontext.Now(ctx)
	userID, err := s.tokens.ValidatePending(pendingToken, now)
	if err != nil {
		return nil, err
	}
	if err := s.checkLock(ctx, userID, now); err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.RollResendWindow(now, s.cfg.ResendWindow)
	if user.SMSResendAttempts >= s.cfg.MaxSMSResends {
		s.logFailure(ctx, "sms_resends_exhausted", "user_id", userID.String())
		_ = s.emit(ctx, audit.Event{Action: string(audit.EventSMSResendsExhausted), UserID: userID})
		return nil, dErrors.New(dErrors.CodeTooManyRequests, "no more codes can be sent, answer your security question")
	}
	user.SMSResendAttempts++
	if err := s.issueCode(ctx, user, now); err != nil {
		return nil, err
	}

	remaining := s.cfg.MaxSMSResends - user.SMSResendAttempts
	next := PageSecurityCode
	if remaining == 0 {
		next = PageSecurityQuestion
	}
	return &models.ResendResult{RemainingResends: remaining, Next: next}, nil
}

// VerifyCode checks the SMS code and signs the applicant in.
func (s *Service) VerifyCode(ctx context.Context, pendingToken string, req *models.VerifyCodeRequest) (*models.SessionResult, error) {
	now := requestcontext.Now(ctx)
	userID, err := s.tokens.ValidatePending(pendingToken, now)
	if err != nil {
		return nil, err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkLock(ctx, userID, now); err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.CodeExpired(now) {
		return nil, dErrors.New(dErrors.CodeExpired, "this code has expired, request a new one")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.SMSCodeHash), []byte(req.Code)) != nil {
		s.logFailure(ctx, "wrong_sms_code", "user_id", userID.String())
		return nil, s.recordFailure(ctx, userID, now, audit.EventSMSCodeFailed, "sms_code")
	}
	return s.completeSignIn(ctx, user, now)
}

// completeSignIn clears second factor state and issues the session.
func (s *Service) completeSignIn(ctx context.Context, user *models.User, now time.Time) (*models.SessionResult, error) {
	if err := s.lockouts.Clear(ctx, user.ID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset attempts")
	}
	user.ClearCode()
	if err := s.saveUser(ctx, user, now); err != nil {
		return nil, err
	}
	return s.startSession(ctx, user, now)
}
