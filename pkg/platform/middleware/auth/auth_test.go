package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"childminder/pkg/requestcontext"
)

type stubValidator struct {
	claims *SessionClaims
	err    error
}

func (s stubValidator) ValidateSession(string, time.Time) (*SessionClaims, error) {
	return s.claims, s.err
}

type stubRevocation struct {
	revoked bool
	err     error
}

func (s stubRevocation) IsSessionRevoked(context.Context, string) (bool, error) {
	return s.revoked, s.err
}

func validClaims() *SessionClaims {
	return &SessionClaims{
		UserID:        uuid.NewString(),
		SessionID:     uuid.NewString(),
		ApplicationID: uuid.NewString(),
		Stage:         StageFull,
	}
}

func TestRequireSession(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	run := func(v SessionValidator, rc RevocationChecker, req *http.Request) (*httptest.ResponseRecorder, bool) {
		called := false
		h := RequireSession(v, rc, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			assert.False(t, requestcontext.ApplicationID(r.Context()).IsNil())
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec, called
	}

	t.Run("missing token is unauthorized", func(t *testing.T) {
		rec, called := run(stubValidator{claims: validClaims()}, nil, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("cookie session is accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok"})
		rec, called := run(stubValidator{claims: validClaims()}, stubRevocation{}, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})

	t.Run("pending sms stage is rejected", func(t *testing.T) {
		claims := validClaims()
		claims.Stage = "sms"
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec, called := run(stubValidator{claims: claims}, nil, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("revoked session is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec, called := run(stubValidator{claims: validClaims()}, stubRevocation{revoked: true}, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, called)
	})

	t.Run("revocation lookup failure is internal error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		rec, _ := run(stubValidator{claims: validClaims()}, stubRevocation{err: errors.New("redis down")}, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
