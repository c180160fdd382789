package repositories

import (
	"bookshelf-restful/models"
	"bookshelf-restful/pagination"

	"gorm.io/gorm"
)

// BookRepository defines read-side book operations. Mutations run
// through BookService so the database transaction and the file write
// stay sequenced together.
type BookRepository interface {
	FindByID(id uint) (*models.Book, error)
	Search(params pagination.Params) ([]models.Book, pagination.Meta, error)
}

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a gorm-backed BookRepository.
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) FindByID(id uint) (*models.Book, error) {
	var book models.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Search pages through books matching the title/author filter.
func (r *bookRepository) Search(params pagination.Params) ([]models.Book, pagination.Meta, error) {
	var books []models.Book
	meta, err := pagination.Paginate(
		r.db.Model(&models.Book{}),
		params,
		[]string{"title", "author"},
		&books,
	)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return books, meta, nil
}
