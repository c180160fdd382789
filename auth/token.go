package auth

import (
	"errors"
	"fmt"
	"time"

	"bookshelf-restful/apperrors"
	"bookshelf-restful/config"

	"github.com/golang-jwt/jwt/v4"
)

// Claims is the signed token payload: subject username plus expiry and
// issued-at instants.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited identity
// tokens. Key, algorithm and default TTL come from configuration and
// are fixed for the process lifetime.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService builds a TokenService from configuration. Only HMAC
// algorithms are accepted; the secret doubles as the verification key.
func NewTokenService(cfg *config.Config) (*TokenService, error) {
	method := jwt.GetSigningMethod(cfg.JwtAlgorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown jwt algorithm %q", cfg.JwtAlgorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("jwt algorithm %q is not an HMAC method", cfg.JwtAlgorithm)
	}
	return &TokenService{
		secret: []byte(cfg.JwtSecret),
		method: method,
		ttl:    cfg.TokenTTL(),
		now:    time.Now,
	}, nil
}

// Issue creates a signed token for subject expiring after ttl, or
// after the configured default when ttl is omitted.
func (s *TokenService) Issue(subject string, ttl ...time.Duration) (string, error) {
	lifetime := s.ttl
	if len(ttl) > 0 {
		lifetime = ttl[0]
	}
	issuedAt := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token string. It distinguishes
// expiry from every other defect so the boundary can report both as
// unauthorized with an accurate message. There is no revocation check;
// expiry is the only way a token dies.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	// Claims validation is skipped at parse time so that expiry can be
	// checked against the service clock rather than the package global.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	// Subject and expiry are required; a token without them never
	// identifies anyone.
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, apperrors.ErrInvalidToken
	}
	// The expiry instant itself is already invalid.
	if !s.now().Before(claims.ExpiresAt.Time) {
		return nil, apperrors.ErrTokenExpired
	}
	return claims, nil
}
