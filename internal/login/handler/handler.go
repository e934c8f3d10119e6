package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"childminder/internal/login/models"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/httputil"
	"childminder/pkg/platform/middleware/auth"
	request "childminder/pkg/platform/middleware/request"
	"childminder/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// PendingCookie carries the second factor token between the link and the code pages.
const PendingCookie = "cm_pending"

// Service defines the sign in operations the handler exposes.
type Service interface {
	RequestLink(ctx context.Context, req *models.RequestLinkRequest) error
	ValidateLink(ctx context.Context, token string) (*models.LinkResult, error)
	ResendCode(ctx context.Context, pendingToken string) (*models.ResendResult, error)
	VerifyCode(ctx context.Context, pendingToken string, req *models.VerifyCodeRequest) (*models.SessionResult, error)
	SecurityQuestion(ctx context.Context, pendingToken string) (*models.Question, error)
	AnswerSecurityQuestion(ctx context.Context, pendingToken string, req *models.AnswerRequest) (*models.SessionResult, error)
	Logout(ctx context.Context, userID id.UserID, sessionID id.SessionID) error
	LoginDetails(ctx context.Context, userID id.UserID) (*models.LoginDetails, error)
	SaveLoginDetails(ctx context.Context, userID id.UserID, appID id.ApplicationID, req *models.LoginDetailsRequest) (*models.SaveResult, error)
}

// Handler serves the sign in pages and the login details task.
type Handler struct {
	service        Service
	logger         *slog.Logger
	requireSession func(http.Handler) http.Handler
	secureCookies  bool
}

func New(service Service, requireSession func(http.Handler) http.Handler, logger *slog.Logger, secureCookies bool) *Handler {
	return &Handler{
		service:        service,
		logger:         logger,
		requireSession: requireSession,
		secureCookies:  secureCookies,
	}
}

// Register mounts every login route.
func (h *Handler) Register(r chi.Router) {
	h.RegisterPublic(r)
	h.RegisterSession(r)
}

// RegisterPublic mounts the unauthenticated sign-in steps. Callers put the per-IP limit here.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/login/link", h.handleRequestLink)
	r.Get("/login/validate/{token}", h.handleValidateLink)
	r.Post("/login/validate/{token}", h.handleValidateLink)
	r.Post("/login/code/resend", h.handleResendCode)
	r.Post("/login/code", h.handleVerifyCode)
	r.Get("/login/security-question", h.handleSecurityQuestion)
	r.Post("/login/security-question", h.handleAnswerSecurityQuestion)
}

// RegisterSession mounts the routes that need a signed-in applicant.
func (h *Handler) RegisterSession(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)
		r.Post("/logout", h.handleLogout)
		r.Get("/application/login-details", h.handleGetLoginDetails)
		r.Put("/application/login-details", h.handleSaveLoginDetails)
	})
}

func (h *Handler) handleRequestLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.RequestLinkRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RequestLink(ctx, &req); err != nil {
		h.writeError(ctx, w, "request link failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"next": "check-email"})
}

func (h *Handler) handleValidateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.service.ValidateLink(ctx, chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(ctx, w, "validate link failed", err)
		return
	}
	if res.Stage == models.StageFull {
		h.setCookie(w, auth.SessionCookie, res.SessionToken, res.ExpiresAt)
	} else {
		h.setCookie(w, PendingCookie, res.PendingToken, res.ExpiresAt)
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleResendCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.service.ResendCode(ctx, pendingToken(r))
	if err != nil {
		h.writeError(ctx, w, "resend code failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.VerifyCodeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.VerifyCode(ctx, pendingToken(r), &req)
	if err != nil {
		h.writeError(ctx, w, "verify code failed", err)
		return
	}
	h.signedIn(w, res)
}

func (h *Handler) handleSecurityQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, err := h.service.SecurityQuestion(ctx, pendingToken(r))
	if err != nil {
		h.writeError(ctx, w, "security question failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, q)
}

func (h *Handler) handleAnswerSecurityQuestion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.AnswerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.AnswerSecurityQuestion(ctx, pendingToken(r), &req)
	if err != nil {
		h.writeError(ctx, w, "security answer failed", err)
		return
	}
	h.signedIn(w, res)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Logout(ctx, requestcontext.UserID(ctx), requestcontext.SessionID(ctx)); err != nil {
		h.writeError(ctx, w, "logout failed", err)
		return
	}
	h.clearCookie(w, auth.SessionCookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetLoginDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	details, err := h.service.LoginDetails(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "load login details failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, details)
}

func (h *Handler) handleSaveLoginDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.LoginDetailsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.SaveLoginDetails(ctx, requestcontext.UserID(ctx), requestcontext.ApplicationID(ctx), &req)
	if err != nil {
		h.writeError(ctx, w, "save login details failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// signedIn swaps the pending cookie for a session cookie.
func (h *Handler) signedIn(w http.ResponseWriter, res *models.SessionResult) {
	h.clearCookie(w, PendingCookie)
	h.setCookie(w, auth.SessionCookie, res.SessionToken, res.ExpiresAt)
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
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

// pendingToken reads the second factor token from the Authorization header or its cookie.
func pendingToken(r *http.Request) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if c, err := r.Cookie(PendingCookie); err == nil {
		return c.Value
	}
	return ""
}
