package services

import (
	"errors"

	"bookshelf-restful/apperrors"
	"bookshelf-restful/auth"
	"bookshelf-restful/models"
	"bookshelf-restful/repositories"

	"gorm.io/gorm"
)

// RegisterInput is the payload for account registration.
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthService handles credential verification, registration and token
// issuance.
type AuthService interface {
	Login(username, password string) (string, error)
	Register(input *RegisterInput) (*models.User, error)
}

type authService struct {
	users  repositories.UserRepository
	tokens *auth.TokenService
}

var _ AuthService = (*authService)(nil)

// NewAuthService creates an AuthService.
func NewAuthService(users repositories.UserRepository, tokens *auth.TokenService) AuthService {
	return &authService{users: users, tokens: tokens}
}

// Login verifies the credentials and issues a token whose subject is
// the username. Unknown user and wrong password are indistinguishable
// to the caller.
func (s *authService) Login(username, password string) (string, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrInvalidCredentials
		}
		return "", apperrors.Internal(err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return "", apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return token, nil
}

// Register creates a new account. Duplicate username or email is a
// Conflict.
func (s *authService) Register(input *RegisterInput) (*models.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByUsername(input.Username); err == nil {
		return nil, apperrors.Conflictf("username %q already registered", input.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal(err)
	}
	if _, err := s.users.FindByEmail(input.Email); err == nil {
		return nil, apperrors.Conflictf("email %q already registered", input.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal(err)
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{Username: input.Username, Email: input.Email, Password: hashed}
	if err := s.users.Create(user); err != nil {
		// The unique index still backstops a lost pre-check race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflictf("username or email already registered")
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}
