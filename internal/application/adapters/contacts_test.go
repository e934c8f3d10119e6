package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"childminder/internal/login/models"
	userstore "childminder/internal/login/store/user"
	id "childminder/pkg/domain"
	dErrors "childminder/pkg/domain-errors"
)

func TestContacts_ApplicantEmail(t *testing.T) {
	users := userstore.NewInMemoryUserStore()
	u := &models.User{ID: id.NewUserID(), Email: "jo@example.com", CreatedAt: time.Now()}
	require.NoError(t, users.Create(context.Background(), u))
	contacts := NewContacts(users)

	got, err := contacts.ApplicantEmail(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", got)

	_, err = contacts.ApplicantEmail(context.Background(), id.NewUserID())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
