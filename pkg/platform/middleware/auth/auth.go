package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	id "childminder/pkg/domain"
	request "childminder/pkg/platform/middleware/request"
	"childminder/pkg/requestcontext"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "cm_session"

// StageFull marks a session that has completed both login factors.
const StageFull = "full"

// SessionValidator validates a signed session token.
type SessionValidator interface {
	ValidateSession(token string, now time.Time) (*SessionClaims, error)
}

// RevocationChecker reports whether a session has been signed out.
type RevocationChecker interface {
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}

// SessionClaims are the claims the middleware needs from a session token.
type SessionClaims struct {
	UserID        string
	SessionID     string
	ApplicationID string
	Stage         string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// TokenFromRequest reads the session token from the Authorization header or
// the session cookie.
func TokenFromRequest(r *http.Request) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// RequireSession rejects requests without a valid, fully authenticated,
// unrevoked session and stores the session identifiers in the context.
func RequireSession(validator SessionValidator, revocation RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			token := TokenFromRequest(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing session", "request_id", requestID)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Sign in to continue")
				return
			}

			claims, err := validator.ValidateSession(token, requestcontext.Now(ctx))
			if err != nil || claims.Stage != StageFull {
				logger.WarnContext(ctx, "unauthorized access - invalid session",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired session")
				return
			}

			if revocation != nil {
				revoked, err := revocation.IsSessionRevoked(ctx, claims.SessionID)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check session revocation",
						"error", err,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to validate session")
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - session revoked",
						"session_id", claims.SessionID,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Session has ended")
					return
				}
			}

			userID, errU := id.ParseUserID(claims.UserID)
			sessionID, errS := id.ParseSessionID(claims.SessionID)
			appID, errA := id.ParseApplicationID(claims.ApplicationID)
			if errU != nil || errS != nil || errA != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed session claims", "request_id", requestID)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired session")
				return
			}

			ctx = requestcontext.WithUserID(ctx, userID)
			ctx = requestcontext.WithSessionID(ctx, sessionID)
			ctx = requestcontext.WithApplicationID(ctx, appID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
