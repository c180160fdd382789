package services

import (
	"errors"

	"bookshelf-restful/apperrors"
	"bookshelf-restful/models"
	"bookshelf-restful/repositories"

	"gorm.io/gorm"
)

// RoleInput is the payload for role creation and rename.
type RoleInput struct {
	Name string `json:"name" validate:"required,max=50"`
}

// AssignPermissionsInput names the complete permission id set the role
// should end up with. Prior members not listed are dropped.
type AssignPermissionsInput struct {
	PermissionIDs []uint `json:"permission_ids" validate:"required"`
}

// RoleService maintains roles and their permission assignments.
type RoleService interface {
	CreateRole(input *RoleInput) (*models.Role, error)
	ListRoles() ([]models.Role, error)
	GetRole(id uint) (*models.Role, error)
	UpdateRole(id uint, input *RoleInput) (*models.Role, error)
	DeleteRole(id uint) (*models.Role, error)
	AssignPermissions(id uint, input *AssignPermissionsInput) (*models.Role, error)
}

type roleService struct {
	repo repositories.RoleRepository
}

var _ RoleService = (*roleService)(nil)

// NewRoleService creates a RoleService.
func NewRoleService(repo repositories.RoleRepository) RoleService {
	return &roleService{repo: repo}
}

func (s *roleService) CreateRole(input *RoleInput) (*models.Role, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByName(input.Name); err == nil {
		return nil, apperrors.Conflictf("role %q already exists", input.Name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal(err)
	}

	role := &models.Role{Name: input.Name}
	if err := s.repo.Create(role); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflictf("role %q already exists", input.Name)
		}
		return nil, apperrors.Internal(err)
	}
	return role, nil
}

func (s *roleService) ListRoles() ([]models.Role, error) {
	roles, err := s.repo.FindAll()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return roles, nil
}

func (s *roleService) GetRole(id uint) (*models.Role, error) {
	role, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("role %d", id)
		}
		return nil, apperrors.Internal(err)
	}
	return role, nil
}

func (s *roleService) UpdateRole(id uint, input *RoleInput) (*models.Role, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	role, err := s.GetRole(id)
	if err != nil {
		return nil, err
	}

	role.Name = input.Name
	if err := s.repo.Update(role); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflictf("role %q already exists", input.Name)
		}
		return nil, apperrors.Internal(err)
	}
	return role, nil
}

// DeleteRole detaches the role from all users and permissions before
// removing the row, and returns the deleted role for the confirmation
// message.
func (s *roleService) DeleteRole(id uint) (*models.Role, error) {
	role, err := s.GetRole(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteWithAssociations(role); err != nil {
		return nil, apperrors.Internal(err)
	}
	return role, nil
}

// AssignPermissions replaces the role's permission set wholesale.
// Validation is all-or-nothing: every requested id must resolve to a
// catalog entry or nothing changes. Re-invoking with the same set is a
// no-op returning the same state.
func (s *roleService) AssignPermissions(id uint, input *AssignPermissionsInput) (*models.Role, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	role, err := s.GetRole(id)
	if err != nil {
		return nil, err
	}

	perms, err := s.repo.FindPermissionsByIDs(input.PermissionIDs)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if len(perms) != len(input.PermissionIDs) {
		return nil, apperrors.NotFoundf("one or more permissions")
	}

	if err := s.repo.ReplacePermissions(role, perms); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.GetRole(id)
}
