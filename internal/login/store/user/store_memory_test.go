package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"childminder/internal/login/models"
	id "childminder/pkg/domain"
	"childminder/pkg/platform/sentinel"
)

type InMemoryUserStoreSuite struct {
	suite.Suite
	store *InMemoryUserStore
	ctx   context.Context
}

func TestInMemoryUserStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryUserStoreSuite))
}

func (s *InMemoryUserStoreSuite) SetupTest() {
	s.store = NewInMemoryUserStore()
	s.ctx = context.Background()
}

func (s *InMemoryUserStoreSuite) newUser(email string) *models.User {
	now := time.Now()
	return &models.User{ID: id.NewUserID(), Email: email, CreatedAt: now, UpdatedAt: now}
}

func (s *InMemoryUserStoreSuite) TestCreateAndFind() {
	u := s.newUser("jo@example.com")
	s.Require().NoError(s.store.Create(s.ctx, u))

	s.Run("by id", func() {
		got, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u.Email, got.Email)
	})

	s.Run("by email", func() {
		got, err := s.store.FindByEmail(s.ctx, "jo@example.com")
		s.Require().NoError(err)
		s.Equal(u.ID, got.ID)
	})

	s.Run("duplicate email conflicts", func() {
		err := s.store.Create(s.ctx, s.newUser("jo@example.com"))
		s.ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("unknown id", func() {
		_, err := s.store.FindByID(s.ctx, id.NewUserID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryUserStoreSuite) TestUpdateEmail() {
	jo := s.newUser("jo@example.com")
	sam := s.newUser("sam@example.com")
	s.Require().NoError(s.store.Create(s.ctx, jo))
	s.Require().NoError(s.store.Create(s.ctx, sam))

	sam.Email = "jo@example.com"
	s.ErrorIs(s.store.Update(s.ctx, sam), sentinel.ErrConflict)

	jo.Email = "joanne@example.com"
	s.Require().NoError(s.store.Update(s.ctx, jo))
	got, err := s.store.FindByEmail(s.ctx, "joanne@example.com")
	s.Require().NoError(err)
	s.Equal(jo.ID, got.ID)
	_, err = s.store.FindByEmail(s.ctx, "jo@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryUserStoreSuite) TestLinkHashLookup() {
	u := s.newUser("link@example.com")
	u.LinkHash = "abc"
	s.Require().NoError(s.store.Create(s.ctx, u))

	got, err := s.store.FindByLinkHash(s.ctx, "abc")
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)

	_, err = s.store.FindByLinkHash(s.ctx, "")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryUserStoreSuite) TestReturnedUsersAreCopies() {
	u := s.newUser("copy@example.com")
	s.Require().NoError(s.store.Create(s.ctx, u))

	got, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	got.Mobile = "07700900000"

	again, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Empty(again.Mobile, "mutating a returned user must not change the store")
}

func TestInMemoryUserStore_UpdateAndDelete(t *testing.T) {
	store := NewInMemoryUserStore()
	ctx := context.Background()
	u := &models.User{ID: id.NewUserID(), Email: "del@example.com"}

	assert.ErrorIs(t, store.Update(ctx, u), sentinel.ErrNotFound)
	require.NoError(t, store.Create(ctx, u))

	u.Mobile = "07700900001"
	require.NoError(t, store.Update(ctx, u))
	got, err := store.FindByEmail(ctx, "del@example.com")
	require.NoError(t, err)
	assert.Equal(t, "07700900001", got.Mobile)

	require.NoError(t, store.Delete(ctx, u.ID))
	_, err = store.FindByEmail(ctx, "del@example.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
