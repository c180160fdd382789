package database

import (
	"errors"

	"bookshelf-restful/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// The permission catalog is fixed seed data. Role management only
// references these rows, it never creates new ones.
var catalogPermissions = []string{
	"custom_book",
	"custom_role_permission",
	"custom_user",
}

var seedRoles = []struct {
	Name        string
	Permissions []string
}{
	{Name: "Admin", Permissions: []string{"custom_book", "custom_role_permission", "custom_user"}},
	{Name: "User", Permissions: []string{"custom_book"}},
}

// Seed creates the permission catalog, the default roles and an
// initial admin account. It is idempotent: existing rows are left
// untouched.
func Seed(db *gorm.DB, logger *zap.Logger) error {
	for _, name := range catalogPermissions {
		var existing models.Permission
		err := db.Where("name = ?", name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&models.Permission{Name: name}).Error; err != nil {
				return err
			}
			logger.Info("seeded permission", zap.String("name", name))
		} else if err != nil {
			return err
		}
	}

	for _, rd := range seedRoles {
		var role models.Role
		err := db.Where("name = ?", rd.Name).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = models.Role{Name: rd.Name}
			if err := db.Create(&role).Error; err != nil {
				return err
			}
			var perms []models.Permission
			if err := db.Where("name IN ?", rd.Permissions).Find(&perms).Error; err != nil {
				return err
			}
			if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
				return err
			}
			logger.Info("seeded role", zap.String("name", rd.Name), zap.Int("permissions", len(perms)))
		} else if err != nil {
			return err
		}
	}

	var admin models.User
	err := db.Where("username = ?", "admin").First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		hashed, err := bcrypt.GenerateFromPassword([]byte("adminpassword"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin = models.User{Username: "admin", Password: string(hashed), Email: "admin@example.com"}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		var adminRole models.Role
		if err := db.Where("name = ?", "Admin").First(&adminRole).Error; err != nil {
			return err
		}
		if err := db.Model(&admin).Association("Roles").Append(&adminRole); err != nil {
			return err
		}
		logger.Info("seeded initial admin user")
	} else if err != nil {
		return err
	}

	return nil
}
