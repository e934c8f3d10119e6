package adapters

import (
	"context"
	"errors"

	"childminder/internal/login/models"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
	"childminder/pkg/platform/sentinel"
)

type userFinder interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
}

// Contacts resolves applicant email addresses from the login user store.
type Contacts struct {
	users userFinder
}

func NewContacts(users userFinder) *Contacts {
	return &Contacts{users: users}
}

func (c *Contacts) ApplicantEmail(ctx context.Context, userID id.UserID) (string, error) {
	u, err := c.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.New(dErrors.CodeNotFound, "applicant not found")
	}
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load applicant")
	}
	return u.Email, nil
}
