package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	cookieName = "images_stash_session"
	userIDKey  = "user_id"
)

// Manager binds an authenticated user id to a signed session cookie.
// Transport and expiry are handled by the gorilla/sessions cookie store.
type Manager struct {
	store *sessions.CookieStore
}

// NewManager creates a session manager signing cookies with secretKey
func NewManager(secretKey string) *Manager {
	store := sessions.NewCookieStore([]byte(secretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

// Start marks the caller as authenticated as userID
func (m *Manager) Start(w http.ResponseWriter, r *http.Request, userID int64) error {
	s, _ := m.store.Get(r, cookieName)
	s.Values[userIDKey] = userID
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Current returns the caller's authenticated user id, if any
func (m *Manager) Current(r *http.Request) (int64, bool) {
	s, err := m.store.Get(r, cookieName)
	if err != nil {
		return 0, false
	}
	id, ok := s.Values[userIDKey].(int64)
	return id, ok
}

// End invalidates the caller's session immediately
func (m *Manager) End(w http.ResponseWriter, r *http.Request) {
	s, _ := m.store.Get(r, cookieName)
	delete(s.Values, userIDKey)
	s.Options.MaxAge = -1
	_ = s.Save(r, w)
}
