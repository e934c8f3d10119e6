// Package service implements applicant sign in: a magic link email followed by
// an SMS code, with a security question when SMS resends run out.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"childminder/internal/login/metrics"
	"childminder/internal/login/models"
	"childminder/internal/notify"
	"childminder/internal/platform/config"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/audit"
	"childminder/pkg/platform/sentinel"
	"childminder/pkg/requestcontext"
)

// Pages returned in Next.
const (
	PageSecurityCode     = "security-code"
	PageSecurityQuestion = "security-question"
	PageLoginDetails     = "your-login-details"
	PageTypeOfChildcare  = "type-of-childcare"
	PageTaskList         = "task-list"
)

// maxLinkEmails caps magic link emails per user per resend window.
const maxLinkEmails = 5

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByLinkHash(ctx context.Context, hash string) (*models.User, error)
}

type LockoutStore interface {
	Get(ctx context.Context, userID id.UserID) (*models.Failures, error)
	RecordFailure(ctx context.Context, userID id.UserID, now time.Time) (*models.Failures, error)
	Lock(ctx context.Context, userID id.UserID, until time.Time) error
	Clear(ctx context.Context, userID id.UserID) error
}

type RevocationStore interface {
	RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}

// Applications is the slice of the application domain that sign in needs.
type Applications interface {
	// EnsureForUser returns the applicant's application, creating a draft when none exists.
	EnsureForUser(ctx context.Context, userID id.UserID) (id.ApplicationID, error)
	SecurityFacts(ctx context.Context, userID id.UserID) (models.SecurityFacts, error)
	CompleteLoginDetails(ctx context.Context, appID id.ApplicationID) error
}

type Service struct {
	users       UserStore
	lockouts    LockoutStore
	revocations RevocationStore
	apps        Applications
	notifier    notify.Sender
	tokens      *TokenService

	cfg       config.LoginConfig
	templates config.NotifyTemplates
	publicURL string

	logger  *slog.Logger
	auditor audit.Emitter
	metrics *metrics.Metrics

	newLinkToken func() (string, error)
	newCode      func() (string, error)
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

func WithConfig(cfg config.LoginConfig) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

// WithTemplates sets the Notify templates and the base URL magic links point at.
func WithTemplates(templates config.NotifyTemplates, publicURL string) Option {
	return func(s *Service) {
		s.templates = templates
		s.publicURL = publicURL
	}
}

// WithCodeGenerator replaces the SMS code source. Tests use it to know the code.
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newCode = fn
	}
}

// WithLinkTokenGenerator replaces the magic link token source.
func WithLinkTokenGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newLinkToken = fn
	}
}

func New(
	users UserStore,
	lockouts LockoutStore,
	revocations RevocationStore,
	apps Applications,
	notifier notify.Sender,
	tokens *TokenService,
	opts ...Option,
) (*Service, error) {
	if users == nil || lockouts == nil || revocations == nil {
		return nil, errors.New("login stores are required")
	}
	if apps == nil || notifier == nil || tokens == nil {
		return nil, errors.New("applications, notifier and token service are required")
	}
	s := &Service{
		users:        users,
		lockouts:     lockouts,
		revocations:  revocations,
		apps:         apps,
		notifier:     notifier,
		tokens:       tokens,
		cfg:          config.DefaultLogin(),
		logger:       slog.Default(),
		newLinkToken: randomToken,
		newCode:      randomCode,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Tokens exposes the token service for the session middleware.
func (s *Service) Tokens() *TokenService {
	return s.tokens
}

func (s *Service) emit(ctx context.Context, e audit.Event) error {
	if s.auditor == nil {
		return nil
	}
	if e.Subject == "" {
		e.Subject = e.UserID.String()
	}
	e.RequestID = requestcontext.RequestID(ctx)
	return s.auditor.Emit(ctx, e)
}

// logFailure records a refused sign in step without failing the request.
func (s *Service) logFailure(ctx context.Context, reason string, attrs ...any) {
	args := append([]any{"reason", reason, "request_id", requestcontext.RequestID(ctx)}, attrs...)
	s.logger.WarnContext(ctx, "login step refused", args...)
}

// checkLock returns a too_many_requests error while the user is hard locked.
func (s *Service) checkLock(ctx context.Context, userID id.UserID, now time.Time) error {
	failures, err := s.lockouts.Get(ctx, userID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check lockout")
	}
	if failures.IsLockedAt(now) {
		return dErrors.New(dErrors.CodeTooManyRequests, "too many attempts, try again later")
	}
	return nil
}

// recordFailure counts a wrong second factor answer and locks the account at the threshold.
func (s *Service) recordFailure(ctx context.Context, userID id.UserID, now time.Time, event audit.AuditEvent, factor string) error {
	failures, err := s.lockouts.RecordFailure(ctx, userID, now)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record attempt")
	}
	s.metrics.IncFactorFailure(factor)
	_ = s.emit(ctx, audit.Event{Action: string(event), UserID: userID, Reason: factor})

	if failures.Count >= s.cfg.MaxCodeFailures {
		until := now.Add(s.cfg.LockDuration)
		if err := s.lockouts.Lock(ctx, userID, until); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock account")
		}
		s.metrics.IncLockout()
		_ = s.emit(ctx, audit.Event{Action: string(audit.EventLoginLockoutTriggered), UserID: userID, Reason: factor})
		s.logFailure(ctx, "lockout_triggered", "user_id", userID.String(), "locked_until", until)
		return dErrors.New(dErrors.CodeTooManyRequests, "too many attempts, try again later")
	}
	switch factor {
	case "sms_code":
		return dErrors.New(dErrors.CodeUnauthorized, "the code you entered is incorrect")
	default:
		return dErrors.New(dErrors.CodeUnauthorized, "the answer you gave does not match our records")
	}
}

func (s *Service) findUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return user, nil
}

func (s *Service) saveUser(ctx context.Context, user *models.User, now time.Time) error {
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save account")
	}
	return nil
}

// hashToken is the lookup key stored for a magic link.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate link token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "", fmt.Errorf("generate sms code: %w", err)
	}
	return fmt.Sprintf("%0*d", models.CodeLength, n.Int64()), nil
}
