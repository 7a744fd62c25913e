package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pavel-fokin/images-stash/internal/auth"
	"github.com/pavel-fokin/images-stash/internal/session"
)

func registerForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, "register.html", pageData{})
	}
}

func register(authService *auth.Service, sess *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.FormValue("username")
		password := r.FormValue("password")

		userID, err := authService.Register(username, password)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidInput):
				renderPage(w, "register.html", pageData{Message: "Username and password are required."})
			case errors.Is(err, auth.ErrUsernameTaken):
				renderPage(w, "register.html", pageData{Message: "Username already exists."})
			default:
				slog.Error("Registration failed", "error", err)
				http.Error(w, "Registration failed", http.StatusInternalServerError)
			}
			return
		}

		if err := sess.Start(w, r, userID); err != nil {
			slog.Error("Failed to start session", "error", err, "user_id", userID)
			http.Error(w, "Registration failed", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/profile", http.StatusSeeOther)
	}
}

func loginForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, "login.html", pageData{})
	}
}

func login(authService *auth.Service, sess *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.FormValue("username")
		password := r.FormValue("password")

		// Unknown username and wrong password get the same response.
		userID, ok := authService.Verify(username, password)
		if !ok {
			renderPage(w, "login.html", pageData{Message: "Invalid credentials"})
			return
		}

		if err := sess.Start(w, r, userID); err != nil {
			slog.Error("Failed to start session", "error", err, "user_id", userID)
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, "/profile", http.StatusSeeOther)
	}
}

func logout(sess *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess.End(w, r)
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

func profile(users auth.UserRepository) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, userID int64) {
		u, err := users.FindByID(userID)
		if err != nil || u == nil {
			slog.Error("Failed to load profile", "error", err, "user_id", userID)
			http.Error(w, "Failed to load profile", http.StatusInternalServerError)
			return
		}
		renderPage(w, "profile.html", pageData{Username: u.Username})
	}
}
