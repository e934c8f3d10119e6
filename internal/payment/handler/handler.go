package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"childminder/internal/payment/models"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/httputil"
	request "childminder/pkg/platform/middleware/request"
	"childminder/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

const maxCardBody = 4 << 10

type Service interface {
	Pay(ctx context.Context, appID id.ApplicationID, card models.CardDetails) (*models.Result, error)
	Status(ctx context.Context, appID id.ApplicationID) (*models.Result, error)
}

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
	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)
		r.Get("/application/payment", h.handleStatus)
		r.Post("/application/payment", h.handlePay)
	})
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxCardBody)
	var card models.CardDetails
	if err := httputil.DecodeJSON(r, &card); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.Pay(ctx, requestcontext.ApplicationID(ctx), card)
	if err != nil {
		h.writeError(ctx, w, "payment failed", err)
		return
	}
	status := http.StatusOK
	if res.Status == models.StatusPending {
		status = http.StatusAccepted
	}
	httputil.WriteJSON(w, status, res)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.service.Status(ctx, requestcontext.ApplicationID(ctx))
	if err != nil {
		h.writeError(ctx, w, "load payment failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// writeError never logs card details; the service errors carry none.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := request.GetRequestID(ctx)
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestID)
	} else {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestID)
	}
	httputil.WriteError(w, err)
}
