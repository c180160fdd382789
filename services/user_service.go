package services

import (
	"errors"

	"bookshelf-restful/apperrors"
	"bookshelf-restful/auth"
	"bookshelf-restful/models"
	"bookshelf-restful/pagination"
	"bookshelf-restful/repositories"

	"gorm.io/gorm"
)

// CreateUserInput is the payload for administrative user creation.
type CreateUserInput struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Username *string `json:"username" validate:"omitempty,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

// UserService manages user accounts.
type UserService interface {
	CreateUser(input *CreateUserInput) (*models.User, error)
	GetUser(id uint) (*models.User, error)
	ListUsers(params pagination.Params) ([]models.User, pagination.Meta, error)
	UpdateUser(id uint, input *UpdateUserInput) (*models.User, error)
	DeleteUser(id uint) error
}

type userService struct {
	repo repositories.UserRepository
}

var _ UserService = (*userService)(nil)

// NewUserService creates a UserService.
func NewUserService(repo repositories.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) CreateUser(input *CreateUserInput) (*models.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByUsername(input.Username); err == nil {
		return nil, apperrors.Conflictf("username %q already exists", input.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal(err)
	}
	if _, err := s.repo.FindByEmail(input.Email); err == nil {
		return nil, apperrors.Conflictf("email %q already exists", input.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal(err)
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	user := &models.User{Username: input.Username, Email: input.Email, Password: hashed}
	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflictf("username or email already exists")
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *userService) GetUser(id uint) (*models.User, error) {
	user, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("user %d", id)
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *userService) ListUsers(params pagination.Params) ([]models.User, pagination.Meta, error) {
	users, meta, err := s.repo.Search(params)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Internal(err)
	}
	return users, meta, nil
}

func (s *userService) UpdateUser(id uint, input *UpdateUserInput) (*models.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("user %d", id)
		}
		return nil, apperrors.Internal(err)
	}

	if input.Username != nil && *input.Username != user.Username {
		if existing, err := s.repo.FindByUsername(*input.Username); err == nil && existing.ID != user.ID {
			return nil, apperrors.Conflictf("username %q already exists", *input.Username)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Internal(err)
		}
		user.Username = *input.Username
	}
	if input.Email != nil && *input.Email != user.Email {
		if existing, err := s.repo.FindByEmail(*input.Email); err == nil && existing.ID != user.ID {
			return nil, apperrors.Conflictf("email %q already in use", *input.Email)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Internal(err)
		}
		user.Email = *input.Email
	}
	if input.Password != nil {
		hashed, err := auth.HashPassword(*input.Password)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		user.Password = hashed
	}

	if err := s.repo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflictf("username or email already in use")
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *userService) DeleteUser(id uint) error {
	user, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("user %d", id)
		}
		return apperrors.Internal(err)
	}
	if err := s.repo.Delete(user); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
