package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	appmodels "childminder/internal/application/models"
	"childminder/internal/integrations/providers"
	"childminder/internal/integrations/worldpay"
	"childminder/internal/payment/models"
	"childminder/internal/payment/service/mocks"
	"childminder/internal/payment/store"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/audit"
	"childminder/pkg/platform/audit/publisher"
	auditmemory "childminder/pkg/platform/audit/store/memory"
	"childminder/pkg/requestcontext"
)

type PaymentServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	gateway *mocks.MockGateway
	apps    *mocks.MockApplications
	audit   *auditmemory.InMemoryStore
	service *Service
	appID   id.ApplicationID
	now     time.Time
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.store = store.NewInMemoryStore()
	s.gateway = mocks.NewMockGateway(ctrl)
	s.apps = mocks.NewMockApplications(ctrl)
	s.audit = auditmemory.NewInMemoryStore()
	s.appID = id.NewApplicationID()
	s.now = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	svc, err := New(s.store, s.gateway, s.apps, WithAuditPublisher(publisher.NewPublisher(s.audit)))
	s.Require().NoError(err)
	s.service = svc
}

func (s *PaymentServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *PaymentServiceSuite) card() models.CardDetails {
	return models.CardDetails{
		CardType:       models.CardVisa,
		CardNumber:     "4111 1111 1111 1111",
		ExpiryMonth:    12,
		ExpiryYear:     28,
		CardholderName: "Ada Lovelace",
		SecurityCode:   "123",
	}
}

func (s *PaymentServiceSuite) orderCode() string {
	return "CM-" + s.appID.String()
}

func (s *PaymentServiceSuite) TestFirstPaymentIsCharged() {
	s.apps.EXPECT().PaymentFee(gomock.Any(), s.appID).Return(3500, nil)
	s.gateway.EXPECT().Authorise(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, o worldpay.Order) (*worldpay.Result, error) {
			s.Equal(s.orderCode(), o.OrderCode)
			s.Equal(3500, o.AmountPence)
			s.Equal("4111111111111111", o.Card.Number)
			s.Equal(2028, o.Card.ExpiryYear)
			return &worldpay.Result{OrderCode: o.OrderCode, Outcome: worldpay.OutcomeAuthorised, Reference: "wp-1"}, nil
		})
	s.apps.EXPECT().Submit(gomock.Any(), s.appID).Return(nil)

	res, err := s.service.Pay(s.ctx(), s.appID, s.card())
	s.Require().NoError(err)
	s.Equal(models.StatusPaid, res.Status)
	s.Equal("wp-1", res.Reference)
	s.Equal(appmodels.PageSubmitted, res.Next)
	s.Contains(s.audit.Actions(), string(audit.EventPaymentSucceeded))
}

func (s *PaymentServiceSuite) TestPaidIsNeverChargedAgain() {
	p := models.NewPayment(s.appID, 3500, s.now)
	p.MarkPaid("wp-1", s.now)
	s.Require().NoError(s.store.Create(context.Background(), p))

	// no gateway expectations: any call fails the test
	s.apps.EXPECT().Submit(gomock.Any(), s.appID).Return(nil)

	res, err := s.service.Pay(s.ctx(), s.appID, s.card())
	s.Require().NoError(err)
	s.Equal(models.StatusPaid, res.Status)
}

func (s *PaymentServiceSuite) TestPaidRepeatIgnoresCard() {
	p := models.NewPayment(s.appID, 3500, s.now)
	p.MarkPaid("wp-1", s.now)
	s.Require().NoError(s.store.Create(context.Background(), p))
	s.apps.EXPECT().Submit(gomock.Any(), s.appID).Return(nil)

	res, err := s.service.Pay(s.ctx(), s.appID, models.CardDetails{})
	s.Require().NoError(err)
	s.Equal(models.StatusPaid, res.Status)
	s.Equal("wp-1", res.Reference)
}

func (s *PaymentServiceSuite) TestNewPaymentIsAuthorisedWithoutQuery() {
	// an outage on the very first attempt must still have tried to charge
	s.apps.EXPECT().PaymentFee(gomock.Any(), s.appID).Return(3500, nil)
	s.gateway.EXPECT().Query(gomock.Any(), gomock.Any()).Times(0)
	s.gateway.EXPECT().Authorise(gomock.Any(), gomock.Any()).
		Return(nil, providers.NewProviderError(providers.ErrorProviderOutage, worldpay.ProviderID, "503", nil))

	_, err := s.service.Pay(s.ctx(), s.appID, s.card())
	s.Error(err)

	p, err := s.store.FindByApplication(context.Background(), s.appID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, p.Status)
	s.Equal(s.orderCode(), p.OrderCode)
}

func (s *PaymentServiceSuite) TestPendingIsQueriedFirst() {
	s.Run("gateway already authorised the order", func() {
		s.SetupTest()
		s.Require().NoError(s.store.Create(context.Background(), models.NewPayment(s.appID, 3500, s.now)))
		s.gateway.EXPECT().Query(gomock.Any(), s.orderCode()).
			Return(&worldpay.Result{OrderCode: s.orderCode(), Outcome: worldpay.OutcomeAuthorised, Reference: "wp-2"}, nil)
		s.apps.EXPECT().Submit(gomock.Any(), s.appID).Return(nil)

		res, err := s.service.Pay(s.ctx(), s.appID, s.card())
		s.Require().NoError(err)
		s.Equal(models.StatusPaid, res.Status)
		s.Equal("wp-2", res.Reference)
	})

	s.Run("gateway never saw the order", func() {
		s.SetupTest()
		s.Require().NoError(s.store.Create(context.Background(), models.NewPayment(s.appID, 3500, s.now)))
		s.gateway.EXPECT().Query(gomock.Any(), s.orderCode()).
			Return(nil, providers.NewProviderError(providers.ErrorNotFound, worldpay.ProviderID, "unknown order", nil))
		s.gateway.EXPECT().Authorise(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, o worldpay.Order) (*worldpay.Result, error) {
				s.Equal(s.orderCode(), o.OrderCode)
				return &worldpay.Result{OrderCode: o.OrderCode, Outcome: worldpay.OutcomeAuthorised}, nil
			})
		s.apps.EXPECT().Submit(gomock.Any(), s.appID).Return(nil)

		_, err := s.service.Pay(s.ctx(), s.appID, s.card())
		s.Require().NoError(err)
	})

	s.Run("still awaiting authorisation", func() {
		s.SetupTest()
		s.Require().NoError(s.store.Create(context.Background(), models.NewPayment(s.appID, 3500, s.now)))
		s.gateway.EXPECT().Query(gomock.Any(), s.orderCode()).
			Return(&worldpay.Result{OrderCode: s.orderCode(), Outcome: worldpay.OutcomePending}, nil)

		res, err := s.service.Pay(s.ctx(), s.appID, s.card())
		s.Require().NoError(err)
		s.Equal(models.StatusPending, res.Status)
		s.Equal(appmodels.PagePayment, res.Next)
	})
}

func (s *PaymentServiceSuite) TestRefusedThenRetried() {
	s.apps.EXPECT().PaymentFee(gomock.Any(), s.appID).Return(3500, nil).Times(2)
	first := s.gateway.EXPECT().Authorise(gomock.Any(), gomock.Any()).
		Return(&worldpay.Result{OrderCode: s.orderCode(), Outcome: worldpay.OutcomeRefused, Reason: "CARD_DECLINED"}, nil)

	_, err := s.service.Pay(s.ctx(), s.appID, s.card())
	s.True(dErrors.HasCode(err, dErrors.CodePaymentFailed))
	p, err := s.store.FindByApplication(context.Background(), s.appID)
	s.Require().NoError(err)
	s.Equal(models.StatusFailed, p.Status)
	s.Equal("CARD_DECLINED", p.FailureReason)
	s.Contains(s.audit.Actions(), string(audit.EventPaymentFailed))

	s.gateway.EXPECT().Authorise(gomock.Any(), gomock.Any()).After(first).DoAndReturn(
		func(_ context.Context, o worldpay.Order) (*worldpay.Result, error) {
			s.Equal(s.orderCode()+"-2", o.OrderCode)
			return &worldpay.Result{OrderCode: o.OrderCode, Outcome: worldpay.OutcomeAuthorised, Reference: "wp-3"}, nil
		})
	s.apps.EXPECT().Submit(gomock.Any(), s.appID).Return(nil)

	res, err := s.service.Pay(s.ctx(), s.appID, s.card())
	s.Require().NoError(err)
	s.Equal(models.StatusPaid, res.Status)
	s.Equal(s.orderCode()+"-2", res.OrderCode)
}

func (s *PaymentServiceSuite) TestGatewayOutageLeavesPaymentPending() {
	s.apps.EXPECT().PaymentFee(gomock.Any(), s.appID).Return(10300, nil)
	s.gateway.EXPECT().Authorise(gomock.Any(), gomock.Any()).
		Return(nil, providers.NewProviderError(providers.ErrorTimeout, worldpay.ProviderID, "deadline exceeded", nil))

	_, err := s.service.Pay(s.ctx(), s.appID, s.card())
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))

	p, err := s.store.FindByApplication(context.Background(), s.appID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, p.Status)
}

func (s *PaymentServiceSuite) TestRejectsInvalidCardBeforeAnythingElse() {
	card := s.card()
	card.CardNumber = "4111111111111112"
	_, err := s.service.Pay(s.ctx(), s.appID, card)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(dErrors.FieldsOf(err), "card_number")
}

func (s *PaymentServiceSuite) TestDeclarationRequired() {
	s.apps.EXPECT().PaymentFee(gomock.Any(), s.appID).
		Return(0, dErrors.New(dErrors.CodeConflict, "complete the declaration before paying"))

	_, err := s.service.Pay(s.ctx(), s.appID, s.card())
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	_, err = s.store.FindByApplication(context.Background(), s.appID)
	s.Error(err)
}

func (s *PaymentServiceSuite) TestSubmitFailureIsReturned() {
	p := models.NewPayment(s.appID, 3500, s.now)
	p.MarkPaid("wp-1", s.now)
	s.Require().NoError(s.store.Create(context.Background(), p))
	s.apps.EXPECT().Submit(gomock.Any(), s.appID).Return(errors.New("db down"))

	_, err := s.service.Pay(s.ctx(), s.appID, s.card())
	s.Error(err)
}

func (s *PaymentServiceSuite) TestStatus() {
	_, err := s.service.Status(s.ctx(), s.appID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Require().NoError(s.store.Create(context.Background(), models.NewPayment(s.appID, 3500, s.now)))
	res, err := s.service.Status(s.ctx(), s.appID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, res.Status)
	s.Equal(3500, res.AmountPence)
}
