package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Storage implements images.FileStorage using a local directory tree.
// Files live under dataDir/u{ownerID}/{token}.{ext}.
type Storage struct {
	dataDir string
}

// NewStorage creates a new filesystem storage rooted at dataDir
func NewStorage(dataDir string) *Storage {
	return &Storage{
		dataDir: dataDir,
	}
}

// Allocate generates a unique leaf name for an owner's file and ensures the
// owner's directory exists. The random token makes collisions negligible, so
// concurrent allocations need no coordination; MkdirAll is idempotent.
func (s *Storage) Allocate(ownerID int64, ext string) (string, string, error) {
	ownerDir := filepath.Join(s.dataDir, fmt.Sprintf("u%d", ownerID))
	if err := os.MkdirAll(ownerDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create owner directory: %w", err)
	}

	storedName := uuid.NewString() + "." + ext
	return storedName, filepath.Join(ownerDir, storedName), nil
}

// Save writes content to path
func (s *Storage) Save(path string, content io.Reader) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		// Clean up the partial file; no metadata references it yet.
		os.Remove(path)
		return fmt.Errorf("failed to write file content: %w", err)
	}

	return nil
}

// Open returns a reader for the file content
func (s *Storage) Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found")
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Remove deletes the file at path
func (s *Storage) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil // File already deleted
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}
