package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"childminder/internal/application/models"
	"childminder/internal/integrations/postcode"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/httputil"
	request "childminder/pkg/platform/middleware/request"
	"childminder/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

const maxPageBody = 64 << 10

// Service defines the wizard operations the handler exposes.
type Service interface {
	View(ctx context.Context, appID id.ApplicationID) (*models.View, error)
	Section(ctx context.Context, appID id.ApplicationID, task models.Task) (models.Section, error)
	SavePage(ctx context.Context, appID id.ApplicationID, page string, body json.RawMessage) (*models.SaveResult, error)
	Resubmit(ctx context.Context, appID id.ApplicationID) (*models.View, error)
	FindAddresses(ctx context.Context, raw string) ([]postcode.Address, error)
	CompleteAdultHealthCheck(ctx context.Context, token string) error
}

// Handler serves the application wizard.
type Handler struct {
	service        Service
	logger         *slog.Logger
	requireSession func(http.Handler) http.Handler
}

func New(service Service, requireSession func(http.Handler) http.Handler, logger *slog.Logger) *Handler {
	return &Handler{
		service:        service,
		logger:         logger,
		requireSession: requireSession,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/health-check/{token}", h.handleCompleteHealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)
		r.Get("/application", h.handleView)
		r.Get("/application/sections/{task}", h.handleSection)
		r.Post("/application/pages/{page}", h.handleSavePage)
		r.Post("/application/resubmit", h.handleResubmit)
		r.Get("/addresses", h.handleFindAddresses)
	})
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.View(ctx, requestcontext.ApplicationID(ctx))
	if err != nil {
		h.writeError(ctx, w, "load application failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	task, ok := models.ParseTask(chi.URLParam(r, "task"))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown task"))
		return
	}
	doc, err := h.service.Section(ctx, requestcontext.ApplicationID(ctx), task)
	if err != nil {
		h.writeError(ctx, w, "load section failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleSavePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPageBody))
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "request body too large"))
		return
	}
	res, err := h.service.SavePage(ctx, requestcontext.ApplicationID(ctx), chi.URLParam(r, "page"), body)
	if err != nil {
		h.writeError(ctx, w, "save page failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleResubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view, err := h.service.Resubmit(ctx, requestcontext.ApplicationID(ctx))
	if err != nil {
		h.writeError(ctx, w, "resubmit failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleFindAddresses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addresses, err := h.service.FindAddresses(ctx, r.URL.Query().Get("postcode"))
	if err != nil {
		h.writeError(ctx, w, "address lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"addresses": addresses})
}

func (h *Handler) handleCompleteHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.CompleteAdultHealthCheck(ctx, chi.URLParam(r, "token")); err != nil {
		h.writeError(ctx, w, "health check failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError logs server faults at error level and client faults at warn.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := request.GetRequestID(ctx)
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestID)
	} else {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestID)
	}
	httputil.WriteError(w, err)
}
