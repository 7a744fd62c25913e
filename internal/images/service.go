package images

import (
	"fmt"
	"io"
	"log/slog"
)

// Service provides application-level image operations. Every operation takes
// the authenticated owner id explicitly; the service holds no request state.
type Service struct {
	storage FileStorage
	repo    ImageRepository
}

// NewService creates a new image service
func NewService(storage FileStorage, repo ImageRepository) *Service {
	return &Service{
		storage: storage,
		repo:    repo,
	}
}

// Upload validates the declared filename, writes the content to a freshly
// allocated per-owner path and commits the metadata row. If the metadata
// commit fails the just-written file is removed so a row never references a
// missing file; the reverse (an orphan file without a row) is tolerated.
func (s *Service) Upload(ownerID int64, declaredFilename string, content io.Reader) (*Image, error) {
	ext, err := PickExtension(declaredFilename)
	if err != nil {
		return nil, err
	}

	storedName, storedPath, err := s.storage.Allocate(ownerID, ext)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate storage path: %w", err)
	}

	if err := s.storage.Save(storedPath, content); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	img, err := s.repo.Insert(ownerID, sanitizeFilename(declaredFilename), storedName, storedPath)
	if err != nil {
		// Compensate: the row never committed, so the file must not outlive it.
		if rmErr := s.storage.Remove(storedPath); rmErr != nil {
			slog.Warn("Failed to clean up file after metadata failure",
				"path", storedPath, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save image metadata: %w", err)
	}

	return img, nil
}

// Open returns the metadata and content of an image if it belongs to ownerID.
func (s *Service) Open(ownerID, id int64) (*Image, io.ReadCloser, error) {
	img, err := s.get(ownerID, id)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.storage.Open(img.StoredPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file content: %w", err)
	}

	return img, content, nil
}

// List returns the owner's images, newest first.
func (s *Service) List(ownerID int64) ([]*Image, error) {
	imgs, err := s.repo.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return imgs, nil
}

// Delete removes an image owned by ownerID. The row goes first; a failure to
// unlink the backing file afterwards leaves a reclaimable orphan and is
// logged, not surfaced.
func (s *Service) Delete(ownerID, id int64) error {
	img, err := s.get(ownerID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete image metadata: %w", err)
	}

	if err := s.storage.Remove(img.StoredPath); err != nil {
		slog.Warn("Failed to remove file after row delete",
			"path", img.StoredPath, "error", err)
	}

	return nil
}

// get fetches an image and checks ownership.
func (s *Service) get(ownerID, id int64) (*Image, error) {
	img, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if img.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return img, nil
}
