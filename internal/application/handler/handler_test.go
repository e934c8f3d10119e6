package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"childminder/internal/application/handler/mocks"
	"childminder/internal/application/models"
	"childminder/internal/integrations/postcode"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/testutil"
)

type ApplicationHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	userID  id.UserID
	appID   id.ApplicationID
}

func TestApplicationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ApplicationHandlerSuite))
}

func (s *ApplicationHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.userID = id.NewUserID()
	s.appID = id.NewApplicationID()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	passthrough := func(next http.Handler) http.Handler { return next }

	s.router = chi.NewRouter()
	New(s.service, passthrough, logger).Register(s.router)
}

func (s *ApplicationHandlerSuite) request(method, path string, body any) *http.Request {
	return testutil.WithSession(testutil.NewJSONRequest(s.T(), method, path, body), s.userID, s.appID)
}

func (s *ApplicationHandlerSuite) TestView() {
	s.service.EXPECT().View(gomock.Any(), s.appID).Return(&models.View{
		ID:     s.appID,
		Status: models.StatusDrafting,
		Tasks:  []models.TaskItem{{Task: models.TaskHealth, Status: models.TaskNotStarted, Available: true}},
	}, nil)
	rr := testutil.Do(s.router, s.request(http.MethodGet, "/application", nil))
	s.Require().Equal(http.StatusOK, rr.Code)

	view := testutil.Decode[models.View](s.T(), rr)
	s.Equal(models.StatusDrafting, view.Status)
	s.Len(view.Tasks, 1)
}

func (s *ApplicationHandlerSuite) TestSection() {
	s.Run("kebab case task", func() {
		no := false
		s.service.EXPECT().Section(gomock.Any(), s.appID, models.TaskHealth).Return(&models.Health{HasConditions: &no}, nil)
		rr := testutil.Do(s.router, s.request(http.MethodGet, "/application/sections/health", nil))
		s.Require().Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"has_conditions":false}`, rr.Body.String())
	})

	s.Run("unknown task", func() {
		rr := testutil.Do(s.router, s.request(http.MethodGet, "/application/sections/cooking", nil))
		testutil.AssertError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *ApplicationHandlerSuite) TestSavePage() {
	s.Run("passes the raw page body", func() {
		s.service.EXPECT().SavePage(gomock.Any(), s.appID, models.PageHealth, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ id.ApplicationID, _ string, body json.RawMessage) (*models.SaveResult, error) {
				s.JSONEq(`{"has_conditions":false}`, string(body))
				return &models.SaveResult{Task: models.TaskHealth, Status: models.TaskCompleted, Next: models.PageReferencesFirst}, nil
			})
		rr := testutil.Do(s.router, s.request(http.MethodPost, "/application/pages/health", map[string]bool{"has_conditions": false}))
		s.Require().Equal(http.StatusOK, rr.Code)

		res := testutil.Decode[models.SaveResult](s.T(), rr)
		s.Equal(models.PageReferencesFirst, res.Next)
		s.Equal(models.TaskCompleted, res.Status)
	})

	s.Run("validation errors carry fields", func() {
		s.service.EXPECT().SavePage(gomock.Any(), s.appID, models.PageHealth, gomock.Any()).
			Return(nil, dErrors.Validation(map[string]string{"has_conditions": "Please say"}))
		rr := testutil.Do(s.router, s.request(http.MethodPost, "/application/pages/health", map[string]any{}))
		resp := testutil.AssertError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
		s.Contains(resp.Fields, "has_conditions")
	})

	s.Run("submitted application", func() {
		s.service.EXPECT().SavePage(gomock.Any(), s.appID, models.PageHealth, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "submitted"))
		rr := testutil.Do(s.router, s.request(http.MethodPost, "/application/pages/health", map[string]any{}))
		testutil.AssertError(s.T(), rr, http.StatusConflict, "conflict")
	})
}

func (s *ApplicationHandlerSuite) TestResubmit() {
	s.service.EXPECT().Resubmit(gomock.Any(), s.appID).Return(&models.View{ID: s.appID, Status: models.StatusARCReview}, nil)
	rr := testutil.Do(s.router, s.request(http.MethodPost, "/application/resubmit", nil))
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal(models.StatusARCReview, testutil.Decode[models.View](s.T(), rr).Status)
}

func (s *ApplicationHandlerSuite) TestFindAddresses() {
	s.service.EXPECT().FindAddresses(gomock.Any(), "LS1 1AA").
		Return([]postcode.Address{{Line1: "1 High Street", Town: "Leeds", Postcode: "LS1 1AA"}}, nil)
	rr := testutil.Do(s.router, s.request(http.MethodGet, "/addresses?postcode=LS1+1AA", nil))
	s.Require().Equal(http.StatusOK, rr.Code)

	body := testutil.Decode[struct {
		Addresses []postcode.Address `json:"addresses"`
	}](s.T(), rr)
	s.Len(body.Addresses, 1)
}

func (s *ApplicationHandlerSuite) TestCompleteHealthCheck() {
	s.Run("completed", func() {
		s.service.EXPECT().CompleteAdultHealthCheck(gomock.Any(), "tok").Return(nil)
		rr := testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/health-check/tok", nil))
		s.Equal(http.StatusNoContent, rr.Code)
	})

	s.Run("already done", func() {
		s.service.EXPECT().CompleteAdultHealthCheck(gomock.Any(), "tok").
			Return(dErrors.New(dErrors.CodeConflict, "health check already completed"))
		rr := testutil.Do(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/health-check/tok", nil))
		testutil.AssertError(s.T(), rr, http.StatusConflict, "conflict")
	})
}
