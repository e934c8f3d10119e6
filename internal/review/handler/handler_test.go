package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	appmodels "childminder/internal/application/models"
	"childminder/internal/review/handler/mocks"
	"childminder/internal/review/models"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/middleware/admin"
	"childminder/pkg/testutil"
)

type ReviewHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	appID   id.ApplicationID
}

func TestReviewHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReviewHandlerSuite))
}

func (s *ReviewHandlerSuite) SetupTest() {
	s.service = mocks.NewMockService(gomock.NewController(s.T()))
	s.appID = id.NewApplicationID()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, admin.RequireAdminToken("secret", logger), logger).Register(s.router)
}

func (s *ReviewHandlerSuite) request(method, path string, body any) *http.Request {
	req := testutil.NewJSONRequest(s.T(), method, path, body)
	req.Header.Set("X-Admin-Token", "secret")
	req.Header.Set(reviewerHeader, "arc-1")
	return req
}

func (s *ReviewHandlerSuite) TestRequiresAdminToken() {
	req := s.request(http.MethodGet, "/admin/applications/", nil)
	req.Header.Del("X-Admin-Token")
	rr := testutil.Do(s.router, req)
	s.Equal(http.StatusUnauthorized, rr.Code)
}

func (s *ReviewHandlerSuite) TestList() {
	s.service.EXPECT().List(gomock.Any()).Return([]models.Summary{{ID: s.appID, Status: appmodels.StatusSubmitted}}, nil)
	rr := testutil.Do(s.router, s.request(http.MethodGet, "/admin/applications/", nil))
	s.Require().Equal(http.StatusOK, rr.Code)
	body := testutil.Decode[struct {
		Applications []models.Summary `json:"applications"`
	}](s.T(), rr)
	s.Require().Len(body.Applications, 1)
	s.Equal(s.appID, body.Applications[0].ID)
}

func (s *ReviewHandlerSuite) TestFlag() {
	s.Run("passes the reviewer and request through", func() {
		s.service.EXPECT().Flag(gomock.Any(), s.appID, "arc-1", &models.FlagRequest{Task: "health", Comment: "more detail"}).
			Return(&models.Summary{ID: s.appID, Status: appmodels.StatusFurtherInformation}, nil)
		rr := testutil.Do(s.router, s.request(http.MethodPost, "/admin/applications/"+s.appID.String()+"/flags",
			map[string]string{"task": "health", "comment": "more detail"}))
		s.Require().Equal(http.StatusOK, rr.Code)
	})

	s.Run("reviewer header is required", func() {
		req := s.request(http.MethodPost, "/admin/applications/"+s.appID.String()+"/flags",
			map[string]string{"task": "health", "comment": "more detail"})
		req.Header.Del(reviewerHeader)
		testutil.AssertError(s.T(), testutil.Do(s.router, req), http.StatusBadRequest, "bad_request")
	})

	s.Run("invalid id", func() {
		rr := testutil.Do(s.router, s.request(http.MethodPost, "/admin/applications/nope/flags",
			map[string]string{"task": "health", "comment": "x"}))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *ReviewHandlerSuite) TestAcceptConflict() {
	s.service.EXPECT().Accept(gomock.Any(), s.appID, "arc-1").
		Return(nil, dErrors.New(dErrors.CodeInvariantViolation, "application has flagged tasks"))
	rr := testutil.Do(s.router, s.request(http.MethodPost, "/admin/applications/"+s.appID.String()+"/accept", nil))
	testutil.AssertError(s.T(), rr, http.StatusUnprocessableEntity, "invariant_violation")
}
