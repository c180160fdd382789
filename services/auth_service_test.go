package services

import (
	"testing"

	"bookshelf-restful/apperrors"
	"bookshelf-restful/auth"
	"bookshelf-restful/config"
	"bookshelf-restful/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (AuthService, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService(&config.Config{
		JwtSecret:       "auth-service-test-secret",
		JwtAlgorithm:    "HS256",
		TokenTTLMinutes: 60,
	})
	require.NoError(t, err)
	users := repositories.NewUserRepository(setupServiceDB(t))
	return NewAuthService(users, tokens), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, tokens := newAuthService(t)

	user, err := svc.Register(&RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	// The stored password is a hash, never the plaintext.
	assert.NotEqual(t, "password1", user.Password)

	token, err := svc.Login("alice", "password1")
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(&RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login("alice", "wrongpassword")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login("nobody", "password1")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestRegisterConflicts(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(&RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password1",
	})
	require.NoError(t, err)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(&RegisterInput{
			Username: "alice",
			Email:    "second@example.com",
			Password: "password1",
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(&RegisterInput{
			Username: "alice2",
			Email:    "alice@example.com",
			Password: "password1",
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(&RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "short",
	})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Messages[0], "Password must be at least 8 characters")
}
