// Package service takes the registration fee. Every application has at most one
// payment record, and the record is consulted before the gateway is called so
// a card is never charged twice.
package service

import (
	"context"
	"errors"
	"log/slog"

	appmodels "childminder/internal/application/models"
	"childminder/internal/integrations/providers"
	"childminder/internal/integrations/worldpay"
	"childminder/internal/payment/metrics"
	"childminder/internal/payment/models"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/audit"
	"childminder/pkg/platform/sentinel"
	"childminder/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, p *models.Payment) error
	Update(ctx context.Context, p *models.Payment) error
	FindByApplication(ctx context.Context, appID id.ApplicationID) (*models.Payment, error)
}

type Gateway interface {
	Authorise(ctx context.Context, order worldpay.Order) (*worldpay.Result, error)
	Query(ctx context.Context, orderCode string) (*worldpay.Result, error)
}

// Applications is the part of the application service payment drives.
type Applications interface {
	PaymentFee(ctx context.Context, appID id.ApplicationID) (int, error)
	Submit(ctx context.Context, appID id.ApplicationID) error
}

type Service struct {
	store   Store
	gateway Gateway
	apps    Applications

	logger  *slog.Logger
	auditor audit.Emitter
	metrics *metrics.Metrics
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

func New(store Store, gateway Gateway, apps Applications, opts ...Option) (*Service, error) {
	if store == nil || gateway == nil || apps == nil {
		return nil, errors.New("payment store, gateway and applications are required")
	}
	s := &Service{
		store:   store,
		gateway: gateway,
		apps:    apps,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Pay charges the registration fee for an application, or reports the
// outcome of the charge already made for it. A paid application returns the
// stored result without looking at the card.
func (s *Service) Pay(ctx context.Context, appID id.ApplicationID, card models.CardDetails) (*models.Result, error) {
	now := requestcontext.Now(ctx)

	p, err := s.store.FindByApplication(ctx, appID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load payment")
	}
	if err == nil && p.Status == models.StatusPaid {
		return s.settle(ctx, p)
	}

	card.Normalize()
	if err := card.Validate(now); err != nil {
		return nil, err
	}

	if p == nil {
		p, err = s.open(ctx, appID)
		if err != nil {
			return nil, err
		}
		return s.authorise(ctx, p, card)
	}

	switch p.Status {
	case models.StatusPending:
		return s.resume(ctx, p, card)
	case models.StatusFailed:
		fee, err := s.apps.PaymentFee(ctx, appID)
		if err != nil {
			return nil, err
		}
		if err := p.Retry(fee, now); err != nil {
			return nil, err
		}
		if err := s.save(ctx, p); err != nil {
			return nil, err
		}
		return s.authorise(ctx, p, card)
	default:
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "payment has unknown status "+string(p.Status))
	}
}

// Status reports the payment for an application without touching the gateway.
func (s *Service) Status(ctx context.Context, appID id.ApplicationID) (*models.Result, error) {
	p, err := s.store.FindByApplication(ctx, appID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no payment has been made")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load payment")
	}
	return p.Result(nextPage(p.Status)), nil
}

// open records the first attempt. A concurrent request that got there first
// surfaces as a conflict rather than a second charge.
func (s *Service) open(ctx context.Context, appID id.ApplicationID) (*models.Payment, error) {
	fee, err := s.apps.PaymentFee(ctx, appID)
	if err != nil {
		return nil, err
	}
	p := models.NewPayment(appID, fee, requestcontext.Now(ctx))
	err = s.store.Create(ctx, p)
	if errors.Is(err, sentinel.ErrConflict) {
		return nil, dErrors.New(dErrors.CodeConflict, "a payment for this application is already in progress")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record payment")
	}
	return p, nil
}

// resume finds out what happened to a pending order. Only an order the
// gateway has never seen is sent again, under the same order code.
func (s *Service) resume(ctx context.Context, p *models.Payment, card models.CardDetails) (*models.Result, error) {
	s.metrics.IncGatewayQuery()
	res, err := s.gateway.Query(ctx, p.OrderCode)
	if providers.GetCategory(err) == providers.ErrorNotFound {
		return s.authorise(ctx, p, card)
	}
	if err != nil {
		s.metrics.IncAttempt("unavailable")
		return nil, providers.ToDomain(err, "payment gateway unavailable")
	}
	return s.apply(ctx, p, res)
}

func (s *Service) authorise(ctx context.Context, p *models.Payment, card models.CardDetails) (*models.Result, error) {
	res, err := s.gateway.Authorise(ctx, worldpay.Order{
		OrderCode:   p.OrderCode,
		AmountPence: p.AmountPence,
		Currency:    "GBP",
		Description: "Childminder registration fee",
		Card: worldpay.Card{
			Type:        string(card.CardType),
			Number:      card.CardNumber,
			HolderName:  card.CardholderName,
			ExpiryMonth: card.ExpiryMonth,
			ExpiryYear:  card.ExpiryYear,
			CVC:         card.SecurityCode,
		},
	})
	if providers.GetCategory(err) == providers.ErrorRejected {
		return nil, s.fail(ctx, p, "rejected by gateway")
	}
	if err != nil {
		// the order may or may not have reached the gateway; it stays PENDING
		// and the next attempt queries it first.
		s.metrics.IncAttempt("unavailable")
		s.logger.WarnContext(ctx, "payment gateway call failed",
			"error", err, "order_code", p.OrderCode, "application_id", p.ApplicationID.String())
		return nil, providers.ToDomain(err, "payment gateway unavailable")
	}
	return s.apply(ctx, p, res)
}

func (s *Service) apply(ctx context.Context, p *models.Payment, res *worldpay.Result) (*models.Result, error) {
	now := requestcontext.Now(ctx)
	switch res.Outcome {
	case worldpay.OutcomeAuthorised:
		p.MarkPaid(res.Reference, now)
		if err := s.save(ctx, p); err != nil {
			return nil, err
		}
		s.metrics.IncAttempt("paid")
		s.metrics.AddCollected(p.AmountPence)
		s.audit(ctx, p, audit.EventPaymentSucceeded, "")
		return s.settle(ctx, p)
	case worldpay.OutcomePending:
		p.UpdatedAt = now
		if err := s.save(ctx, p); err != nil {
			return nil, err
		}
		s.metrics.IncAttempt("pending")
		return p.Result(nextPage(p.Status)), nil
	default:
		reason := res.Reason
		if reason == "" {
			reason = string(res.Outcome)
		}
		return nil, s.fail(ctx, p, reason)
	}
}

// settle hands a paid application to the application service. Submit is a
// no-op once the application has left draft, so repeating it is safe.
func (s *Service) settle(ctx context.Context, p *models.Payment) (*models.Result, error) {
	if err := s.apps.Submit(ctx, p.ApplicationID); err != nil {
		return nil, err
	}
	return p.Result(nextPage(p.Status)), nil
}

func (s *Service) fail(ctx context.Context, p *models.Payment, reason string) error {
	p.MarkFailed(reason, requestcontext.Now(ctx))
	if err := s.save(ctx, p); err != nil {
		return err
	}
	s.metrics.IncAttempt("failed")
	s.audit(ctx, p, audit.EventPaymentFailed, reason)
	return dErrors.New(dErrors.CodePaymentFailed, "your payment was not accepted, check your card details or use a different card")
}

func (s *Service) save(ctx context.Context, p *models.Payment) error {
	if err := s.store.Update(ctx, p); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save payment")
	}
	return nil
}

func (s *Service) audit(ctx context.Context, p *models.Payment, event audit.AuditEvent, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Action:        string(event),
		UserID:        requestcontext.UserID(ctx),
		ApplicationID: p.ApplicationID,
		Subject:       p.OrderCode,
		Reason:        reason,
		RequestID:     requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to audit payment", "error", err, "order_code", p.OrderCode)
	}
}

func nextPage(status models.Status) string {
	if status == models.StatusPaid {
		return appmodels.PageSubmitted
	}
	return appmodels.PagePayment
}
