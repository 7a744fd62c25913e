package images

import (
	"errors"
	"io"
	"time"
)

// Image represents the metadata of a stored image
type Image struct {
	ID               int64     `json:"id"`
	OwnerID          int64     `json:"owner_id"`
	OriginalFilename string    `json:"original_filename"`
	StoredFilename   string    `json:"stored_filename"`
	StoredPath       string    `json:"stored_path"`
	CreatedAt        time.Time `json:"created_at"`
}

var (
	// ErrNotFound is returned when no image exists for the given id.
	ErrNotFound = errors.New("image not found")

	// ErrForbidden is returned when the image exists but belongs to another user.
	ErrForbidden = errors.New("image not owned by caller")

	// ErrInvalidFileType is returned for filenames outside the allowed extension set.
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrStoredNameTaken is returned on a stored_filename uniqueness violation.
	// Unreachable in practice given random allocation; kept as an invariant check.
	ErrStoredNameTaken = errors.New("stored filename already exists")
)

// ImageRepository defines the interface for storing and retrieving image metadata
type ImageRepository interface {
	Insert(ownerID int64, originalFilename, storedFilename, storedPath string) (*Image, error)
	Get(id int64) (*Image, error)
	ListByOwner(ownerID int64) ([]*Image, error)
	Delete(id int64) error
}

// FileStorage defines the interface for the physical image storage
type FileStorage interface {
	// Allocate reserves a unique on-disk location for an owner's file,
	// creating the owner's directory if needed.
	Allocate(ownerID int64, ext string) (storedFilename, storedPath string, err error)

	// Save writes content to path, cleaning up a partial file on failure.
	Save(path string, content io.Reader) error

	// Open returns a reader for the file at path.
	Open(path string) (io.ReadCloser, error)

	// Remove deletes the file at path. An already-absent file is not an error.
	Remove(path string) error
}
