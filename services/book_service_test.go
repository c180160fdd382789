package services

import (
	"os"
	"strings"
	"testing"

	"bookshelf-restful/apperrors"
	"bookshelf-restful/models"
	"bookshelf-restful/pagination"
	"bookshelf-restful/repositories"
	"bookshelf-restful/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newBookService(t *testing.T) (BookService, *gorm.DB, *storage.FileStore, string) {
	t.Helper()
	db := setupServiceDB(t)
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	svc := NewBookService(db, repositories.NewBookRepository(db), store, zap.NewNop())
	return svc, db, store, dir
}

func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestCreateBook(t *testing.T) {
	svc, db, store, dir := newBookService(t)

	book, err := svc.CreateBook(&BookInput{
		Title:       "The Go Programming Language",
		Author:      "Donovan",
		Description: "Reference",
	}, pngBytes(t))
	require.NoError(t, err)
	assert.NotZero(t, book.ID)
	assert.True(t, strings.HasSuffix(book.Picture, ".jpg"))
	assert.True(t, store.Exists(book.Picture))

	var stored models.Book
	require.NoError(t, db.First(&stored, book.ID).Error)
	assert.Equal(t, book.Picture, stored.Picture)
	assert.Equal(t, []string{book.Picture}, storedFiles(t, dir))
}

func TestCreateBookFailureLeavesNoTrace(t *testing.T) {
	svc, db, _, dir := newBookService(t)

	_, err := svc.CreateBook(&BookInput{Title: "Broken", Author: "Nobody"},
		strings.NewReader("this is not an image"))
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	var count int64
	require.NoError(t, db.Model(&models.Book{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, storedFiles(t, dir))
}

func TestCreateBookValidation(t *testing.T) {
	svc, _, _, _ := newBookService(t)

	_, err := svc.CreateBook(&BookInput{Title: "", Author: ""}, pngBytes(t))
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Messages, 2)
}

func TestUpdateBookScalarsOnly(t *testing.T) {
	svc, _, store, _ := newBookService(t)

	book, err := svc.CreateBook(&BookInput{Title: "Old", Author: "A"}, pngBytes(t))
	require.NoError(t, err)

	updated, err := svc.UpdateBook(book.ID, &BookInput{Title: "New", Author: "A", Description: "d"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, book.Picture, updated.Picture)
	assert.True(t, store.Exists(book.Picture))
}

func TestUpdateBookReplacesImage(t *testing.T) {
	svc, _, store, dir := newBookService(t)

	book, err := svc.CreateBook(&BookInput{Title: "T", Author: "A"}, pngBytes(t))
	require.NoError(t, err)
	oldFile := book.Picture

	updated, err := svc.UpdateBook(book.ID, &BookInput{Title: "T", Author: "A"}, pngBytes(t))
	require.NoError(t, err)
	assert.NotEqual(t, oldFile, updated.Picture)
	assert.True(t, store.Exists(updated.Picture))
	assert.False(t, store.Exists(oldFile))
	assert.Equal(t, []string{updated.Picture}, storedFiles(t, dir))
}

func TestUpdateBookImageFailureKeepsOriginal(t *testing.T) {
	svc, db, store, dir := newBookService(t)

	book, err := svc.CreateBook(&BookInput{Title: "Original", Author: "A"}, pngBytes(t))
	require.NoError(t, err)

	_, err = svc.UpdateBook(book.ID, &BookInput{Title: "Changed", Author: "A"},
		strings.NewReader("not an image"))
	assert.ErrorIs(t, err, apperrors.ErrInternal)

	// The record still references its original, unchanged state and no
	// stray file was left behind.
	var stored models.Book
	require.NoError(t, db.First(&stored, book.ID).Error)
	assert.Equal(t, "Original", stored.Title)
	assert.Equal(t, book.Picture, stored.Picture)
	assert.True(t, store.Exists(book.Picture))
	assert.Equal(t, []string{book.Picture}, storedFiles(t, dir))
}

func TestUpdateBookNotFound(t *testing.T) {
	svc, _, _, _ := newBookService(t)
	_, err := svc.UpdateBook(9999, &BookInput{Title: "T", Author: "A"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteBook(t *testing.T) {
	svc, db, store, _ := newBookService(t)

	book, err := svc.CreateBook(&BookInput{Title: "T", Author: "A"}, pngBytes(t))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(book.ID))

	_, err = svc.GetBook(book.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, store.Exists(book.Picture))

	// The row is gone outright; no flagged record survives pointing at
	// the removed file.
	var rows int64
	require.NoError(t, db.Unscoped().Model(&models.Book{}).Count(&rows).Error)
	assert.Zero(t, rows)

	t.Run("missing book", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteBook(book.ID), apperrors.ErrNotFound)
	})
}

func TestDeleteBookSurvivesMissingFile(t *testing.T) {
	svc, _, store, _ := newBookService(t)

	book, err := svc.CreateBook(&BookInput{Title: "T", Author: "A"}, pngBytes(t))
	require.NoError(t, err)

	// Simulate an already-lost file; the delete must still succeed.
	require.NoError(t, store.Remove(book.Picture))
	require.NoError(t, svc.DeleteBook(book.ID))

	_, err = svc.GetBook(book.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListBooks(t *testing.T) {
	svc, _, _, _ := newBookService(t)

	for _, title := range []string{"Go in Action", "Python Crash Course", "The Go Programming Language"} {
		_, err := svc.CreateBook(&BookInput{Title: title, Author: "Author"}, pngBytes(t))
		require.NoError(t, err)
	}

	books, meta, err := svc.ListBooks(pagination.Params{Search: "go", Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, books, 2)
	assert.Equal(t, int64(2), meta.Total)
	assert.Equal(t, 1, meta.TotalPages)
}
