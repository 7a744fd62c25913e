package images

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage keeps file contents in a map keyed by path.
type fakeStorage struct {
	files    map[string]string
	saveErr  error
	allocSeq int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string]string{}}
}

func (f *fakeStorage) Allocate(ownerID int64, ext string) (string, string, error) {
	f.allocSeq++
	name := fmt.Sprintf("token-%d.%s", f.allocSeq, ext)
	return name, fmt.Sprintf("/data/u%d/%s", ownerID, name), nil
}

func (f *fakeStorage) Save(path string, content io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	f.files[path] = string(data)
	return nil
}

func (f *fakeStorage) Open(path string) (io.ReadCloser, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func (f *fakeStorage) Remove(path string) error {
	delete(f.files, path)
	return nil
}

// fakeRepo keeps image rows in insertion order.
type fakeRepo struct {
	rows      []*Image
	nextID    int64
	insertErr error
}

func (f *fakeRepo) Insert(ownerID int64, originalFilename, storedFilename, storedPath string) (*Image, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	img := &Image{
		ID:               f.nextID,
		OwnerID:          ownerID,
		OriginalFilename: originalFilename,
		StoredFilename:   storedFilename,
		StoredPath:       storedPath,
		CreatedAt:        time.Now().UTC(),
	}
	f.rows = append(f.rows, img)
	return img, nil
}

func (f *fakeRepo) Get(id int64) (*Image, error) {
	for _, img := range f.rows {
		if img.ID == id {
			return img, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) ListByOwner(ownerID int64) ([]*Image, error) {
	var out []*Image
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].OwnerID == ownerID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) Delete(id int64) error {
	for i, img := range f.rows {
		if img.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func TestServiceUpload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		storage := newFakeStorage()
		repo := &fakeRepo{}
		svc := NewService(storage, repo)

		img, err := svc.Upload(1, "photo.PNG", strings.NewReader("image bytes"))
		require.NoError(t, err)

		assert.Equal(t, int64(1), img.OwnerID)
		assert.Equal(t, "photo.PNG", img.OriginalFilename)
		assert.NotEqual(t, img.OriginalFilename, img.StoredFilename)
		assert.True(t, strings.HasSuffix(img.StoredFilename, ".png"), "extension should be normalized")
		assert.Equal(t, "image bytes", storage.files[img.StoredPath])
	})

	t.Run("invalid file type has no side effects", func(t *testing.T) {
		storage := newFakeStorage()
		repo := &fakeRepo{}
		svc := NewService(storage, repo)

		_, err := svc.Upload(1, "script.exe", strings.NewReader("nope"))
		assert.ErrorIs(t, err, ErrInvalidFileType)
		assert.Empty(t, storage.files)
		assert.Empty(t, repo.rows)
	})

	t.Run("write failure leaves no row", func(t *testing.T) {
		storage := newFakeStorage()
		storage.saveErr = errors.New("disk full")
		repo := &fakeRepo{}
		svc := NewService(storage, repo)

		_, err := svc.Upload(1, "photo.jpg", strings.NewReader("image bytes"))
		assert.Error(t, err)
		assert.Empty(t, repo.rows)
	})

	t.Run("metadata failure removes written file", func(t *testing.T) {
		storage := newFakeStorage()
		repo := &fakeRepo{insertErr: errors.New("constraint violation")}
		svc := NewService(storage, repo)

		_, err := svc.Upload(1, "photo.jpg", strings.NewReader("image bytes"))
		assert.Error(t, err)
		assert.Empty(t, storage.files, "compensation should remove the file")
		assert.Empty(t, repo.rows)
	})
}

func TestServiceOpen(t *testing.T) {
	storage := newFakeStorage()
	repo := &fakeRepo{}
	svc := NewService(storage, repo)

	img, err := svc.Upload(1, "photo.jpg", strings.NewReader("image bytes"))
	require.NoError(t, err)

	t.Run("owner reads content", func(t *testing.T) {
		got, content, err := svc.Open(1, img.ID)
		require.NoError(t, err)
		defer content.Close()

		data, err := io.ReadAll(content)
		require.NoError(t, err)
		assert.Equal(t, "image bytes", string(data))
		assert.Equal(t, img.ID, got.ID)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		_, _, err := svc.Open(2, img.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, _, err := svc.Open(1, 999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestServiceDelete(t *testing.T) {
	t.Run("removes row and file", func(t *testing.T) {
		storage := newFakeStorage()
		repo := &fakeRepo{}
		svc := NewService(storage, repo)

		img, err := svc.Upload(1, "photo.jpg", strings.NewReader("image bytes"))
		require.NoError(t, err)

		require.NoError(t, svc.Delete(1, img.ID))
		assert.Empty(t, storage.files)

		imgs, err := svc.List(1)
		require.NoError(t, err)
		assert.Empty(t, imgs)
	})

	t.Run("second delete is not found", func(t *testing.T) {
		storage := newFakeStorage()
		repo := &fakeRepo{}
		svc := NewService(storage, repo)

		img, err := svc.Upload(1, "photo.jpg", strings.NewReader("image bytes"))
		require.NoError(t, err)

		require.NoError(t, svc.Delete(1, img.ID))
		assert.ErrorIs(t, svc.Delete(1, img.ID), ErrNotFound)
	})

	t.Run("other user is forbidden and target is untouched", func(t *testing.T) {
		storage := newFakeStorage()
		repo := &fakeRepo{}
		svc := NewService(storage, repo)

		img, err := svc.Upload(1, "photo.jpg", strings.NewReader("image bytes"))
		require.NoError(t, err)

		assert.ErrorIs(t, svc.Delete(2, img.ID), ErrForbidden)

		imgs, err := svc.List(1)
		require.NoError(t, err)
		require.Len(t, imgs, 1)
		assert.Contains(t, storage.files, img.StoredPath)
	})
}

func TestServiceList(t *testing.T) {
	storage := newFakeStorage()
	repo := &fakeRepo{}
	svc := NewService(storage, repo)

	first, err := svc.Upload(1, "first.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := svc.Upload(1, "second.jpg", strings.NewReader("b"))
	require.NoError(t, err)
	_, err = svc.Upload(2, "other.jpg", strings.NewReader("c"))
	require.NoError(t, err)

	imgs, err := svc.List(1)
	require.NoError(t, err)
	require.Len(t, imgs, 2)
	assert.Equal(t, second.ID, imgs[0].ID, "newest first")
	assert.Equal(t, first.ID, imgs[1].ID)
}
