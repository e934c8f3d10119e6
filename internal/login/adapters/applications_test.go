package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmodels "childminder/internal/application/models"
	id "childminder/pkg/domain"
)

type fakeApplicationService struct {
	facts     appmodels.Facts
	completed id.ApplicationID
}

func (f *fakeApplicationService) EnsureForUser(context.Context, id.UserID) (id.ApplicationID, error) {
	return id.NewApplicationID(), nil
}

func (f *fakeApplicationService) SecurityFacts(context.Context, id.UserID) (appmodels.Facts, error) {
	return f.facts, nil
}

func (f *fakeApplicationService) CompleteLoginDetails(_ context.Context, appID id.ApplicationID) error {
	f.completed = appID
	return nil
}

func TestApplications_MapsSecurityFacts(t *testing.T) {
	dob := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := &fakeApplicationService{facts: appmodels.Facts{DateOfBirth: &dob, Postcode: "LS1 1AA"}}
	apps := NewApplications(svc)

	facts, err := apps.SecurityFacts(context.Background(), id.NewUserID())
	require.NoError(t, err)
	assert.Equal(t, id.Postcode("LS1 1AA"), facts.Postcode)
	assert.Equal(t, &dob, facts.DateOfBirth)

	appID := id.NewApplicationID()
	require.NoError(t, apps.CompleteLoginDetails(context.Background(), appID))
	assert.Equal(t, appID, svc.completed)
}
