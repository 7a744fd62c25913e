package auth

import "errors"

// User represents a registered account
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

var (
	// ErrInvalidInput is returned when a required field is empty after trimming.
	ErrInvalidInput = errors.New("username and password are required")

	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")
)

// UserRepository defines the interface for persisting accounts
type UserRepository interface {
	// CreateUser stores a new account and returns its id.
	// Returns ErrUsernameTaken on a username uniqueness violation.
	CreateUser(username, passwordHash string) (int64, error)

	// FindByUsername retrieves an account by exact username match.
	// Returns (nil, nil) when no such account exists.
	FindByUsername(username string) (*User, error)

	// FindByID retrieves an account by id.
	// Returns (nil, nil) when no such account exists.
	FindByID(id int64) (*User, error)
}
