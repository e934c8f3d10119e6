package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"childminder/internal/review/models"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/httputil"
	request "childminder/pkg/platform/middleware/request"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// reviewerHeader names the reviewer acting behind the shared admin token.
const reviewerHeader = "X-Reviewer"

type Service interface {
	List(ctx context.Context) ([]models.Summary, error)
	Get(ctx context.Context, appID id.ApplicationID) (*models.Detail, error)
	StartReview(ctx context.Context, appID id.ApplicationID, reviewer string) (*models.Summary, error)
	Flag(ctx context.Context, appID id.ApplicationID, reviewer string, req *models.FlagRequest) (*models.Summary, error)
	Accept(ctx context.Context, appID id.ApplicationID, reviewer string) (*models.Summary, error)
}

type Handler struct {
	service      Service
	logger       *slog.Logger
	requireAdmin func(http.Handler) http.Handler
}

func New(service Service, requireAdmin func(http.Handler) http.Handler, logger *slog.Logger) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		requireAdmin: requireAdmin,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/admin/applications", func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Post("/{id}/review", h.handleStartReview)
		r.Post("/{id}/flags", h.handleFlag)
		r.Post("/{id}/accept", h.handleAccept)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.List(ctx)
	if err != nil {
		h.writeError(ctx, w, "list applications failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"applications": list})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appID, err := id.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid application id"))
		return
	}
	detail, err := h.service.Get(ctx, appID)
	if err != nil {
		h.writeError(ctx, w, "load application failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleStartReview(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "start review failed", func(ctx context.Context, appID id.ApplicationID, reviewer string) (*models.Summary, error) {
		return h.service.StartReview(ctx, appID, reviewer)
	})
}

func (h *Handler) handleFlag(w http.ResponseWriter, r *http.Request) {
	var req models.FlagRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.act(w, r, "flag task failed", func(ctx context.Context, appID id.ApplicationID, reviewer string) (*models.Summary, error) {
		return h.service.Flag(ctx, appID, reviewer, &req)
	})
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "accept failed", func(ctx context.Context, appID id.ApplicationID, reviewer string) (*models.Summary, error) {
		return h.service.Accept(ctx, appID, reviewer)
	})
}

// act resolves the application id and reviewer shared by every state change.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, msg string,
	fn func(ctx context.Context, appID id.ApplicationID, reviewer string) (*models.Summary, error),
) {
	ctx := r.Context()
	appID, err := id.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid application id"))
		return
	}
	reviewer := strings.TrimSpace(r.Header.Get(reviewerHeader))
	if reviewer == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, reviewerHeader+" header is required"))
		return
	}
	summary, err := fn(ctx, appID, reviewer)
	if err != nil {
		h.writeError(ctx, w, msg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := request.GetRequestID(ctx)
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestID)
	} else {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestID)
	}
	httputil.WriteError(w, err)
}
