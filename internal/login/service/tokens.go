package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"childminder/internal/login/models"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/middleware/auth"
)

// Claims are carried in both pending and session tokens.
type Claims struct {
	UserID        string       `json:"user_id"`
	SessionID     string       `json:"session_id,omitempty"`
	ApplicationID string       `json:"application_id,omitempty"`
	Stage         models.Stage `json:"stage"`
	jwt.RegisteredClaims
}

// TokenService signs and validates login tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
}

func NewTokenService(signingKey, issuer string) *TokenService {
	return &TokenService{signingKey: []byte(signingKey), issuer: issuer}
}

// IssuePending signs a token that only unlocks the second factor endpoints.
func (s *TokenService) IssuePending(userID id.UserID, now time.Time, ttl time.Duration) (string, error) {
	return s.sign(Claims{UserID: userID.String(), Stage: models.StageSMS}, now, ttl)
}

// IssueSession signs a fully authenticated session token.
func (s *TokenService) IssueSession(userID id.UserID, sessionID id.SessionID, appID id.ApplicationID, now time.Time, ttl time.Duration) (string, error) {
	return s.sign(Claims{
		UserID:        userID.String(),
		SessionID:     sessionID.String(),
		ApplicationID: appID.String(),
		Stage:         models.StageFull,
	}, now, ttl)
}

func (s *TokenService) sign(claims Claims, now time.Time, ttl time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    s.issuer,
		ID:        uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// Validate parses a token and checks its signature, issuer and expiry. Expiry
// is judged at now, the same clock the token was issued with.
func (s *TokenService) Validate(token string, now time.Time) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ValidatePending accepts only second factor tokens and returns the user they belong to.
func (s *TokenService) ValidatePending(token string, now time.Time) (id.UserID, error) {
	claims, err := s.Validate(token, now)
	if err != nil {
		return id.UserID{}, err
	}
	if claims.Stage != models.StageSMS {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token stage")
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return userID, nil
}

// ValidateSession satisfies the session middleware.
func (s *TokenService) ValidateSession(token string, now time.Time) (*auth.SessionClaims, error) {
	claims, err := s.Validate(token, now)
	if err != nil {
		return nil, err
	}
	return &auth.SessionClaims{
		UserID:        claims.UserID,
		SessionID:     claims.SessionID,
		ApplicationID: claims.ApplicationID,
		Stage:         string(claims.Stage),
	}, nil
}
