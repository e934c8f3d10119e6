package adapters

import (
	"context"

	appmodels "childminder/internal/application/models"
	"childminder/internal/login/models"
	id "childminder/pkg/domain"
)

// applicationService is the part of the application service sign in relies on.
// Defined locally to avoid coupling login to the application service package.
type applicationService interface {
	EnsureForUser(ctx context.Context, userID id.UserID) (id.ApplicationID, error)
	SecurityFacts(ctx context.Context, userID id.UserID) (appmodels.Facts, error)
	CompleteLoginDetails(ctx context.Context, appID id.ApplicationID) error
}

// Applications adapts the application service to login's Applications port.
type Applications struct {
	svc applicationService
}

func NewApplications(svc applicationService) *Applications {
	return &Applications{svc: svc}
}

func (a *Applications) EnsureForUser(ctx context.Context, userID id.UserID) (id.ApplicationID, error) {
	return a.svc.EnsureForUser(ctx, userID)
}

func (a *Applications) SecurityFacts(ctx context.Context, userID id.UserID) (models.SecurityFacts, error) {
	facts, err := a.svc.SecurityFacts(ctx, userID)
	if err != nil {
		return models.SecurityFacts{}, err
	}
	return models.SecurityFacts{
		DateOfBirth: facts.DateOfBirth,
		Postcode:    facts.Postcode,
	}, nil
}

func (a *Applications) CompleteLoginDetails(ctx context.Context, appID id.ApplicationID) error {
	return a.svc.CompleteLoginDetails(ctx, appID)
}
