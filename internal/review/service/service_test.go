package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	appmodels "childminder/internal/application/models"
	appstore "childminder/internal/application/store"
	"childminder/internal/notify"
	notifymocks "childminder/internal/notify/mocks"
	"childminder/internal/review/models"
	"childminder/internal/review/service/mocks"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/audit"
	"childminder/pkg/platform/audit/publisher"
	auditmemory "childminder/pkg/platform/audit/store/memory"
	"childminder/pkg/requestcontext"
)

type ReviewServiceSuite struct {
	suite.Suite
	store    *appstore.InMemoryStore
	contacts *mocks.MockContacts
	sender   *notifymocks.MockSender
	audit    *auditmemory.InMemoryStore
	service  *Service
	now      time.Time
}

func TestReviewServiceSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceSuite))
}

func (s *ReviewServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.store = appstore.NewInMemoryStore()
	s.contacts = mocks.NewMockContacts(ctrl)
	s.sender = notifymocks.NewMockSender(ctrl)
	s.audit = auditmemory.NewInMemoryStore()
	s.now = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	svc, err := New(s.store, s.contacts, s.sender,
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithFurtherInfoTemplate("tpl-further", "https://apply.test"),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *ReviewServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

// submitted stores an application that has completed every task and paid.
func (s *ReviewServiceSuite) submitted() *appmodels.Application {
	app := appmodels.NewApplication(id.NewApplicationID(), id.NewUserID(), s.now.Add(-48*time.Hour))
	for _, t := range appmodels.Tasks {
		app.Tasks[t] = appmodels.TaskCompleted
	}
	s.Require().NoError(app.Submit(s.now.Add(-time.Hour)))
	s.Require().NoError(s.store.Create(context.Background(), app))
	return app
}

func (s *ReviewServiceSuite) TestListSkipsDraftsAndAccepted() {
	draft := appmodels.NewApplication(id.NewApplicationID(), id.NewUserID(), s.now)
	s.Require().NoError(s.store.Create(context.Background(), draft))
	waiting := s.submitted()

	accepted := s.submitted()
	s.Require().NoError(accepted.Accept(s.now))
	s.Require().NoError(s.store.Update(context.Background(), accepted))

	list, err := s.service.List(s.ctx())
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(waiting.ID, list[0].ID)
}

func (s *ReviewServiceSuite) TestGet() {
	app := s.submitted()
	s.Require().NoError(s.store.SaveSection(context.Background(), app.ID, appmodels.TaskHealth, json.RawMessage(`{"has_conditions":false}`), s.now))

	detail, err := s.service.Get(s.ctx(), app.ID)
	s.Require().NoError(err)
	s.JSONEq(`{"has_conditions":false}`, string(detail.Sections[appmodels.TaskHealth]))
	s.NotContains(detail.Sections, appmodels.TaskReferences)

	draft := appmodels.NewApplication(id.NewApplicationID(), id.NewUserID(), s.now)
	s.Require().NoError(s.store.Create(context.Background(), draft))
	_, err = s.service.Get(s.ctx(), draft.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ReviewServiceSuite) TestFlagEmailsApplicant() {
	app := s.submitted()
	_, err := s.service.StartReview(s.ctx(), app.ID, "arc-1")
	s.Require().NoError(err)

	s.contacts.EXPECT().ApplicantEmail(gomock.Any(), app.UserID).Return("ada@example.com", nil)
	s.sender.EXPECT().SendEmail(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg notify.Message) (string, error) {
			s.Equal("tpl-further", msg.TemplateID)
			s.Equal("ada@example.com", msg.To)
			s.Equal("first aid", msg.Personalisation["task"])
			return "n-1", nil
		})

	summary, err := s.service.Flag(s.ctx(), app.ID, "arc-1", &models.FlagRequest{Task: "first-aid", Comment: " certificate is illegible "})
	s.Require().NoError(err)
	s.Equal(appmodels.StatusFurtherInformation, summary.Status)
	s.Equal([]appmodels.Task{appmodels.TaskFirstAid}, summary.FlaggedTasks)

	stored, err := s.store.FindByID(context.Background(), app.ID)
	s.Require().NoError(err)
	s.Equal("certificate is illegible", stored.Flags[appmodels.TaskFirstAid])

	events, err := s.audit.ListAll(context.Background())
	s.Require().NoError(err)
	last := events[len(events)-1]
	s.Equal(string(audit.EventTaskFlagged), last.Action)
	s.Equal("arc-1", last.ActorID)
}

func (s *ReviewServiceSuite) TestFlagValidation() {
	app := s.submitted()
	_, err := s.service.Flag(s.ctx(), app.ID, "arc-1", &models.FlagRequest{Task: "juggling"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(dErrors.FieldsOf(err), "task")
	s.Contains(dErrors.FieldsOf(err), "comment")

	_, err = s.service.Flag(s.ctx(), app.ID, "arc-1", &models.FlagRequest{Task: "payment", Comment: "x"})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ReviewServiceSuite) TestAccept() {
	app := s.submitted()
	summary, err := s.service.Accept(s.ctx(), app.ID, "arc-2")
	s.Require().NoError(err)
	s.Equal(appmodels.StatusAccepted, summary.Status)
	s.Contains(s.audit.Actions(), string(audit.EventApplicationAccepted))

	_, err = s.service.Accept(s.ctx(), app.ID, "arc-2")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = s.service.StartReview(s.ctx(), id.NewApplicationID(), "arc-2")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
