package repositories

import (
	"bookshelf-restful/models"
	"bookshelf-restful/pagination"

	"gorm.io/gorm"
)

// UserRepository defines user-related database operations.
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(user *models.User) error
	Search(params pagination.Params) ([]models.User, pagination.Meta, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a gorm-backed UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Roles").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete removes the row outright, together with its role join rows,
// so the username and email become available again.
func (r *userRepository) Delete(user *models.User) error {
	return r.db.Select("Roles").Unscoped().Delete(user).Error
}

// Search pages through users matching the username/email filter.
func (r *userRepository) Search(params pagination.Params) ([]models.User, pagination.Meta, error) {
	var users []models.User
	meta, err := pagination.Paginate(
		r.db.Model(&models.User{}),
		params,
		[]string{"username", "email"},
		&users,
	)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return users, meta, nil
}
