package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a bcrypt hash of an unguessable value. Verify compares against
// it when the username is unknown so both failure paths do the same work.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service provides account registration and credential verification
type Service struct {
	repo UserRepository
}

// NewService creates a new auth service
func NewService(repo UserRepository) *Service {
	return &Service{repo: repo}
}

// Register creates an account and returns its id. The raw password is never
// stored; only a bcrypt hash is.
func (s *Service) Register(username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return 0, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.repo.CreateUser(username, string(hash))
	if err != nil {
		return 0, err
	}

	return id, nil
}

// Verify returns the user id for a matching username/password pair. An
// unknown username and a wrong password are indistinguishable to the caller.
func (s *Service) Verify(username, password string) (int64, bool) {
	username = strings.TrimSpace(username)

	u, err := s.repo.FindByUsername(username)
	if err != nil || u == nil {
		bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return 0, false
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return 0, false
	}

	return u.ID, true
}
