package repositories

import (
	"bookshelf-restful/models"

	"gorm.io/gorm"
)

// RoleRepository defines role and permission-catalog database
// operations.
type RoleRepository interface {
	Create(role *models.Role) error
	FindByID(id uint) (*models.Role, error)
	FindByName(name string) (*models.Role, error)
	FindAll() ([]models.Role, error)
	Update(role *models.Role) error
	DeleteWithAssociations(role *models.Role) error
	FindPermissionsByIDs(ids []uint) ([]models.Permission, error)
	ReplacePermissions(role *models.Role, perms []models.Permission) error
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a gorm-backed RoleRepository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(role *models.Role) error {
	return r.db.Create(role).Error
}

func (r *roleRepository) FindByID(id uint) (*models.Role, error) {
	var role models.Role
	if err := r.db.Preload("Permissions").First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindAll() ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) Update(role *models.Role) error {
	return r.db.Save(role).Error
}

// DeleteWithAssociations clears both sides of the role's many-to-many
// relations before deleting the row, so no dangling join rows remain.
// The delete is permanent; the role name is free for reuse afterwards.
func (r *roleRepository) DeleteWithAssociations(role *models.Role) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(role).Association("Permissions").Clear(); err != nil {
			return err
		}
		if err := tx.Model(role).Association("Users").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(role).Error
	})
}

func (r *roleRepository) FindPermissionsByIDs(ids []uint) ([]models.Permission, error) {
	var perms []models.Permission
	if err := r.db.Where("id IN ?", ids).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

// ReplacePermissions swaps the role's permission set wholesale.
func (r *roleRepository) ReplacePermissions(role *models.Role, perms []models.Permission) error {
	return r.db.Model(role).Association("Permissions").Replace(perms)
}
