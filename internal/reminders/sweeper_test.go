package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	appmodels "childminder/internal/application/models"
	appstore "childminder/internal/application/store"
	notifymocks "childminder/internal/notify/mocks"
	"childminder/internal/platform/config"
	"childminder/internal/reminders/mocks"
	id "childminder/pkg/domain"
	"childminder/pkg/platform/audit"
	"childminder/pkg/platform/audit/publisher"
	auditmemory "childminder/pkg/platform/audit/store/memory"
	"childminder/pkg/platform/sentinel"
)

const day = 24 * time.Hour

type SweeperSuite struct {
	suite.Suite
	store    *appstore.InMemoryStore
	contacts *mocks.MockContacts
	sender   *notifymocks.MockSender
	audit    *auditmemory.InMemoryStore
	sweeper  *Sweeper
	now      time.Time
}

func TestSweeperSuite(t *testing.T) {
	suite.Run(t, new(SweeperSuite))
}

func (s *SweeperSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.store = appstore.NewInMemoryStore()
	s.contacts = mocks.NewMockContacts(ctrl)
	s.sender = notifymocks.NewMockSender(ctrl)
	s.audit = auditmemory.NewInMemoryStore()
	s.now = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	sw, err := New(s.store, s.contacts, s.sender,
		config.ReminderConfig{Interval: time.Minute, ReminderIdle: 30 * day, ExpiryIdle: 60 * day},
		WithTemplates(config.NotifyTemplates{InactiveReminder: "tpl-remind", ApplicationExpiry: "tpl-expired"}, "https://apply.test"),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
	s.sweeper = sw
}

func (s *SweeperSuite) draft(idle time.Duration) *appmodels.Application {
	app := appmodels.NewApplication(id.NewApplicationID(), id.NewUserID(), s.now.Add(-idle))
	s.Require().NoError(s.store.Create(context.Background(), app))
	return app
}

func (s *SweeperSuite) TestRemindsOnce() {
	app := s.draft(31 * day)
	s.draft(10 * day)

	s.contacts.EXPECT().ApplicantEmail(gomock.Any(), app.UserID).Return("ada@example.com", nil)
	s.sender.EXPECT().SendEmail(gomock.Any(), gomock.Any()).Return("n-1", nil)

	res, err := s.sweeper.SweepOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(Result{Reminded: 1}, res)

	stored, err := s.store.FindByID(context.Background(), app.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.ReminderSentAt)
	s.Equal(app.UpdatedAt, stored.UpdatedAt)
	s.Contains(s.audit.Actions(), string(audit.EventReminderSent))

	// a second sweep finds the same idle draft but has already reminded it
	res, err = s.sweeper.SweepOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(Result{}, res)
}

func (s *SweeperSuite) TestExpiresAbandonedDrafts() {
	app := s.draft(61 * day)
	submitted := appmodels.NewApplication(id.NewApplicationID(), id.NewUserID(), s.now.Add(-90*day))
	for _, t := range appmodels.Tasks {
		submitted.Tasks[t] = appmodels.TaskCompleted
	}
	s.Require().NoError(submitted.Submit(s.now.Add(-90 * day)))
	s.Require().NoError(s.store.Create(context.Background(), submitted))

	s.contacts.EXPECT().ApplicantEmail(gomock.Any(), app.UserID).Return("ada@example.com", nil)
	s.sender.EXPECT().SendEmail(gomock.Any(), gomock.Any()).Return("n-2", nil)

	res, err := s.sweeper.SweepOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(Result{Expired: 1}, res)

	_, err = s.store.FindByID(context.Background(), app.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByID(context.Background(), submitted.ID)
	s.NoError(err)
	s.Contains(s.audit.Actions(), string(audit.EventApplicationExpired))
}

func (s *SweeperSuite) TestReminderFailureStopsSweep() {
	s.draft(40 * day)
	s.contacts.EXPECT().ApplicantEmail(gomock.Any(), gomock.Any()).Return("ada@example.com", nil)
	s.sender.EXPECT().SendEmail(gomock.Any(), gomock.Any()).Return("", errors.New("notify down"))

	_, err := s.sweeper.SweepOnce(context.Background())
	s.Error(err)
	s.NotContains(s.audit.Actions(), string(audit.EventReminderSent))
}

func (s *SweeperSuite) TestRejectsInvertedWindows() {
	_, err := New(s.store, s.contacts, s.sender, config.ReminderConfig{ReminderIdle: 60 * day, ExpiryIdle: 30 * day})
	s.Error(err)
}

func (s *SweeperSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.NoError(s.sweeper.Run(ctx))
}
