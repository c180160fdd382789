package auth

import (
	"testing"
	"time"

	"bookshelf-restful/apperrors"
	"bookshelf-restful/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenConfig() *config.Config {
	return &config.Config{
		JwtSecret:       "test-secret",
		JwtAlgorithm:    "HS256",
		TokenTTLMinutes: 60,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testTokenConfig())
	require.NoError(t, err)

	for _, subject := range []string{"alice", "bob", "admin@example.com", "user-42"} {
		token, err := svc.Issue(subject)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, subject, claims.Subject)
	}
}

func TestTokenDefaultTTL(t *testing.T) {
	svc, err := NewTokenService(testTokenConfig())
	require.NoError(t, err)

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue("alice")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Time.Equal(issued.Add(60*time.Minute)))
	assert.True(t, claims.IssuedAt.Time.Equal(issued))
}

func TestTokenExpiry(t *testing.T) {
	svc, err := NewTokenService(testTokenConfig())
	require.NoError(t, err)

	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.Issue("alice", time.Minute)
	require.NoError(t, err)

	t.Run("valid before expiry", func(t *testing.T) {
		svc.now = func() time.Time { return issued.Add(59 * time.Second) }
		_, err := svc.Verify(token)
		assert.NoError(t, err)
	})

	t.Run("expired exactly at expiry", func(t *testing.T) {
		svc.now = func() time.Time { return issued.Add(time.Minute) }
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("expired after expiry", func(t *testing.T) {
		svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})
}

func TestTokenVerifyRejectsInvalid(t *testing.T) {
	svc, err := NewTokenService(testTokenConfig())
	require.NoError(t, err)

	t.Run("garbage string", func(t *testing.T) {
		_, err := svc.Verify("not-a-token")
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other, err := NewTokenService(&config.Config{
			JwtSecret: "other-secret", JwtAlgorithm: "HS256", TokenTTLMinutes: 60,
		})
		require.NoError(t, err)
		token, err := other.Issue("alice")
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		other, err := NewTokenService(&config.Config{
			JwtSecret: "test-secret", JwtAlgorithm: "HS512", TokenTTLMinutes: 60,
		})
		require.NoError(t, err)
		token, err := other.Issue("alice")
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestNewTokenServiceRejectsNonHMAC(t *testing.T) {
	_, err := NewTokenService(&config.Config{JwtSecret: "s", JwtAlgorithm: "RS256"})
	assert.Error(t, err)

	_, err = NewTokenService(&config.Config{JwtSecret: "s", JwtAlgorithm: "bogus"})
	assert.Error(t, err)
}
