// Package storage persists book images under a single designated
// directory. Stored names are opaque random tokens with a fixed .jpg
// extension; callers build retrieval locators from them and never see
// filesystem paths.
package storage

import (
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/google/uuid"
)

// jpegQuality matches the normalization applied by the importer the
// catalog was migrated from.
const jpegQuality = 70

// FileStore writes and removes image files under a fixed root.
type FileStore struct {
	root string
}

// NewFileStore creates the storage root if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

// SaveImage decodes the uploaded image (jpeg, png or webp) and
// re-encodes it as JPEG under a fresh random filename. The random
// basename makes concurrent writes collision-free without locking.
// Returns the stored filename.
func (s *FileStore) SaveImage(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	id := uuid.New()
	filename := hex.EncodeToString(id[:]) + ".jpg"

	f, err := os.Create(filepath.Join(s.root, filename))
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("encoding image: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("closing image file: %w", err)
	}
	return filename, nil
}

// Remove deletes a stored file. Removing a file that is already gone
// is not an error.
func (s *FileStore) Remove(filename string) error {
	if filename == "" {
		return nil
	}
	if strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("invalid stored filename %q", filename)
	}
	err := os.Remove(filepath.Join(s.root, filename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether a stored file is present.
func (s *FileStore) Exists(filename string) bool {
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		return false
	}
	_, err := os.Stat(filepath.Join(s.root, filename))
	return err == nil
}

// Root returns the storage root for static file serving.
func (s *FileStore) Root() string {
	return s.root
}
