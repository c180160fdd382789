package services

import (
	"testing"

	"bookshelf-restful/apperrors"
	"bookshelf-restful/auth"
	"bookshelf-restful/models"
	"bookshelf-restful/pagination"
	"bookshelf-restful/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) UserService {
	t.Helper()
	return NewUserService(repositories.NewUserRepository(setupServiceDB(t)))
}

func TestCreateUserAndConflicts(t *testing.T) {
	svc := newUserService(t)

	user, err := svc.CreateUser(&CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.True(t, auth.CheckPassword(user.Password, "password1"))

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.CreateUser(&CreateUserInput{Username: "alice", Email: "other@example.com", Password: "password1"})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.CreateUser(&CreateUserInput{Username: "bob", Email: "alice@example.com", Password: "password1"})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := svc.CreateUser(&CreateUserInput{Username: "bob", Email: "not-an-email", Password: "short"})
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Messages, 2)
	})
}

func TestGetUser(t *testing.T) {
	svc := newUserService(t)
	created, err := svc.CreateUser(&CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)

	user, err := svc.GetUser(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.GetUser(9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateUserPartial(t *testing.T) {
	svc := newUserService(t)
	created, err := svc.CreateUser(&CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)

	newEmail := "alice@new.example.com"
	updated, err := svc.UpdateUser(created.ID, &UpdateUserInput{Email: &newEmail})
	require.NoError(t, err)
	assert.Equal(t, newEmail, updated.Email)
	assert.Equal(t, "alice", updated.Username)

	newPassword := "newpassword1"
	updated, err = svc.UpdateUser(created.ID, &UpdateUserInput{Password: &newPassword})
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(updated.Password, newPassword))

	t.Run("email taken by another user", func(t *testing.T) {
		other, err := svc.CreateUser(&CreateUserInput{Username: "bob", Email: "bob@example.com", Password: "password1"})
		require.NoError(t, err)

		_, err = svc.UpdateUser(other.ID, &UpdateUserInput{Email: &newEmail})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := svc.UpdateUser(9999, &UpdateUserInput{Email: &newEmail})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	svc := newUserService(t)
	created, err := svc.CreateUser(&CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(created.ID))

	_, err = svc.GetUser(created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteUser(created.ID), apperrors.ErrNotFound)
}

func TestDeleteUserAllowsUsernameReuse(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewUserService(repositories.NewUserRepository(db))

	created, err := svc.CreateUser(&CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteUser(created.ID))

	// The row is gone outright, so username and email are free again.
	var rows int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("username = ?", "alice").Count(&rows).Error)
	assert.Zero(t, rows)

	recreated, err := svc.CreateUser(&CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, recreated.ID)
}

func TestListUsersSearch(t *testing.T) {
	svc := newUserService(t)
	seed := []CreateUserInput{
		{Username: "alice", Email: "alice@example.com", Password: "password1"},
		{Username: "bob", Email: "bob@example.com", Password: "password1"},
		{Username: "carol", Email: "carol@alice.net", Password: "password1"},
	}
	for i := range seed {
		_, err := svc.CreateUser(&seed[i])
		require.NoError(t, err)
	}

	// Username match plus email-domain match.
	users, meta, err := svc.ListUsers(pagination.Params{Search: "alice", Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, int64(2), meta.Total)

	users, meta, err = svc.ListUsers(pagination.Params{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, int64(3), meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}
