package services

import (
	"errors"
	"io"

	"bookshelf-restful/apperrors"
	"bookshelf-restful/models"
	"bookshelf-restful/pagination"
	"bookshelf-restful/repositories"
	"bookshelf-restful/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BookInput is the scalar payload for book creation and update.
type BookInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Author      string `json:"author" validate:"required,max=255"`
	Description string `json:"description"`
}

// BookService coordinates book rows with their image files. Every
// mutation sequences the database transaction and the file write so a
// partial failure can leave an orphaned file at worst, never an
// orphaned record or a record pointing at a missing file.
type BookService interface {
	CreateBook(input *BookInput, image io.Reader) (*models.Book, error)
	GetBook(id uint) (*models.Book, error)
	ListBooks(params pagination.Params) ([]models.Book, pagination.Meta, error)
	UpdateBook(id uint, input *BookInput, image io.Reader) (*models.Book, error)
	DeleteBook(id uint) error
}

type bookService struct {
	db     *gorm.DB
	repo   repositories.BookRepository
	store  *storage.FileStore
	logger *zap.Logger
}

var _ BookService = (*bookService)(nil)

// NewBookService creates a BookService.
func NewBookService(db *gorm.DB, repo repositories.BookRepository, store *storage.FileStore, logger *zap.Logger) BookService {
	return &bookService{db: db, repo: repo, store: store, logger: logger}
}

// CreateBook inserts the record first (uncommitted, to allocate an id),
// then writes the normalized image, and commits only after the file is
// safely on disk. Any failure removes the partial file and rolls the
// row back, leaving no trace of the attempt.
func (s *bookService) CreateBook(input *BookInput, image io.Reader) (*models.Book, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, apperrors.Internal(tx.Error)
	}

	book := models.Book{
		Title:       input.Title,
		Author:      input.Author,
		Description: input.Description,
	}
	if err := tx.Create(&book).Error; err != nil {
		tx.Rollback()
		return nil, apperrors.Internal(err)
	}

	filename, err := s.store.SaveImage(image)
	if err != nil {
		tx.Rollback()
		return nil, apperrors.Internal(err)
	}

	book.Picture = filename
	if err := tx.Model(&book).Update("picture", filename).Error; err != nil {
		s.removeFile(filename)
		tx.Rollback()
		return nil, apperrors.Internal(err)
	}
	if err := tx.Commit().Error; err != nil {
		s.removeFile(filename)
		return nil, apperrors.Internal(err)
	}
	return &book, nil
}

func (s *bookService) GetBook(id uint) (*models.Book, error) {
	book, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("book %d", id)
		}
		return nil, apperrors.Internal(err)
	}
	return book, nil
}

func (s *bookService) ListBooks(params pagination.Params) ([]models.Book, pagination.Meta, error) {
	books, meta, err := s.repo.Search(params)
	if err != nil {
		return nil, pagination.Meta{}, apperrors.Internal(err)
	}
	return books, meta, nil
}

// UpdateBook applies scalar changes and, when a replacement image is
// supplied, writes the new file before the old one is touched. The old
// file is deleted only after the commit succeeds, so there is never a
// window with no file at all; the cost is transient double storage.
func (s *bookService) UpdateBook(id uint, input *BookInput, image io.Reader) (*models.Book, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, apperrors.Internal(tx.Error)
	}

	var book models.Book
	if err := tx.First(&book, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("book %d", id)
		}
		return nil, apperrors.Internal(err)
	}

	book.Title = input.Title
	book.Author = input.Author
	book.Description = input.Description

	oldFile := ""
	newFile := ""
	if image != nil {
		filename, err := s.store.SaveImage(image)
		if err != nil {
			tx.Rollback()
			return nil, apperrors.Internal(err)
		}
		newFile = filename
		oldFile = book.Picture
		book.Picture = newFile
	}

	if err := tx.Save(&book).Error; err != nil {
		s.removeFile(newFile)
		tx.Rollback()
		return nil, apperrors.Internal(err)
	}
	if err := tx.Commit().Error; err != nil {
		s.removeFile(newFile)
		return nil, apperrors.Internal(err)
	}

	// Only after the commit is the old image unreferenced.
	if oldFile != "" && oldFile != newFile {
		if err := s.store.Remove(oldFile); err != nil {
			s.logger.Warn("failed to remove replaced book image",
				zap.Uint("book_id", book.ID), zap.String("file", oldFile), zap.Error(err))
		}
	}
	return &book, nil
}

// DeleteBook removes the record, then the file. File removal is
// best-effort: if it fails the record is gone regardless, and the
// delete still reports success (an orphaned file is the accepted
// bounded inconsistency, an orphaned record is not).
func (s *bookService) DeleteBook(id uint) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return apperrors.Internal(tx.Error)
	}

	var book models.Book
	if err := tx.First(&book, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("book %d", id)
		}
		return apperrors.Internal(err)
	}

	// Permanent delete: a flagged row would keep referencing the image
	// file removed below.
	if err := tx.Unscoped().Delete(&book).Error; err != nil {
		tx.Rollback()
		return apperrors.Internal(err)
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.Internal(err)
	}

	if book.Picture != "" {
		if err := s.store.Remove(book.Picture); err != nil {
			s.logger.Warn("failed to remove deleted book image",
				zap.Uint("book_id", book.ID), zap.String("file", book.Picture), zap.Error(err))
		}
	}
	return nil
}

func (s *bookService) removeFile(filename string) {
	if filename == "" {
		return
	}
	if err := s.store.Remove(filename); err != nil {
		s.logger.Warn("failed to clean up book image", zap.String("file", filename), zap.Error(err))
	}
}
