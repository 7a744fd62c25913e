package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pavel-fokin/images-stash/internal/auth"
	"github.com/pavel-fokin/images-stash/internal/images"
	_ "modernc.org/sqlite"
)

// Repository implements auth.UserRepository and images.ImageRepository
// using SQLite
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite repository
func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}

	// Initialize database schema
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// initSchema creates the necessary database tables
func (r *Repository) initSchema() error {
	createTablesQuery := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		original_filename TEXT NOT NULL,
		stored_filename TEXT NOT NULL UNIQUE,
		stored_path TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_images_user_created ON images(user_id, created_at);
	`
	if _, err := r.db.Exec(createTablesQuery); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// CreateUser stores a new account and returns its id
func (r *Repository) CreateUser(username, passwordHash string) (int64, error) {
	query := `INSERT INTO users (username, password_hash) VALUES (?, ?)`

	result, err := r.db.Exec(query, username, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			return 0, auth.ErrUsernameTaken
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get user id: %w", err)
	}

	return id, nil
}

// FindByUsername retrieves an account by exact username match
func (r *Repository) FindByUsername(username string) (*auth.User, error) {
	query := `SELECT id, username, password_hash FROM users WHERE username = ?`

	var u auth.User
	err := r.db.QueryRow(query, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &u, nil
}

// FindByID retrieves an account by id
func (r *Repository) FindByID(id int64) (*auth.User, error) {
	query := `SELECT id, username, password_hash FROM users WHERE id = ?`

	var u auth.User
	err := r.db.QueryRow(query, id).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &u, nil
}

// Insert stores image metadata, assigning created_at at commit time
func (r *Repository) Insert(ownerID int64, originalFilename, storedFilename, storedPath string) (*images.Image, error) {
	query := `
	INSERT INTO images (user_id, original_filename, stored_filename, stored_path, created_at)
	VALUES (?, ?, ?, ?, ?)
	`

	createdAt := time.Now().UTC()
	result, err := r.db.Exec(query, ownerID, originalFilename, storedFilename, storedPath, createdAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: images.stored_filename") {
			return nil, images.ErrStoredNameTaken
		}
		return nil, fmt.Errorf("failed to create image record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get image id: %w", err)
	}

	return &images.Image{
		ID:               id,
		OwnerID:          ownerID,
		OriginalFilename: originalFilename,
		StoredFilename:   storedFilename,
		StoredPath:       storedPath,
		CreatedAt:        createdAt,
	}, nil
}

// Get retrieves image metadata by id
func (r *Repository) Get(id int64) (*images.Image, error) {
	query := `
	SELECT id, user_id, original_filename, stored_filename, stored_path, created_at
	FROM images
	WHERE id = ?
	`

	var img images.Image
	err := r.db.QueryRow(query, id).Scan(
		&img.ID,
		&img.OwnerID,
		&img.OriginalFilename,
		&img.StoredFilename,
		&img.StoredPath,
		&img.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, images.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find image: %w", err)
	}

	return &img, nil
}

// ListByOwner retrieves an owner's image metadata, newest first.
// Ties on created_at fall back to insertion order.
func (r *Repository) ListByOwner(ownerID int64) ([]*images.Image, error) {
	query := `
	SELECT id, user_id, original_filename, stored_filename, stored_path, created_at
	FROM images
	WHERE user_id = ?
	ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var imageList []*images.Image
	for rows.Next() {
		var img images.Image
		err := rows.Scan(
			&img.ID,
			&img.OwnerID,
			&img.OriginalFilename,
			&img.StoredFilename,
			&img.StoredPath,
			&img.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		imageList = append(imageList, &img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating image rows: %w", err)
	}

	return imageList, nil
}

// Delete removes image metadata by id. Deleting an already-absent id is a no-op.
func (r *Repository) Delete(id int64) error {
	query := `DELETE FROM images WHERE id = ?`

	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}

	return nil
}
