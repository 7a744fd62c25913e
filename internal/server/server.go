package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/pavel-fokin/images-stash/internal/auth"
	"github.com/pavel-fokin/images-stash/internal/fs"
	"github.com/pavel-fokin/images-stash/internal/images"
	"github.com/pavel-fokin/images-stash/internal/session"
	"github.com/pavel-fokin/images-stash/internal/sqlite"
)

type Config struct {
	SecretKey string `env:"IMAGES_STASH_SECRET_KEY,required"`
	DBPath    string `env:"IMAGES_STASH_DB_PATH,required"`
	DataDir   string `env:"IMAGES_STASH_DATA_DIR,required"`
	MaxSize   int64  `env:"IMAGES_STASH_MAX_SIZE,required"`
}

func New(cfg *Config) *http.Server {
	// Initialize structured logger with JSON handler
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Initialize storage and repository
	storage := fs.NewStorage(cfg.DataDir)
	repo, err := sqlite.NewRepository(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize repository", "error", err)
		panic(fmt.Sprintf("Failed to initialize repository: %v", err))
	}

	// Initialize services and session manager
	authService := auth.NewService(repo)
	imageService := images.NewService(storage, repo)
	sess := session.NewManager(cfg.SecretKey)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthz)
	mux.HandleFunc("GET /{$}", index(sess))
	mux.HandleFunc("GET /register", registerForm())
	mux.HandleFunc("POST /register", register(authService, sess))
	mux.HandleFunc("GET /login", loginForm())
	mux.HandleFunc("POST /login", login(authService, sess))
	mux.HandleFunc("GET /logout", logout(sess))
	mux.HandleFunc("GET /profile", requireUser(sess, profile(repo)))
	mux.HandleFunc("GET /images", requireUser(sess, listImages(imageService)))
	mux.HandleFunc("POST /images/upload", requireUser(sess, uploadImage(cfg, imageService)))
	mux.HandleFunc("GET /images/{id}/file", requireUser(sess, imageFile(imageService)))
	mux.HandleFunc("POST /images/{id}/delete", requireUser(sess, deleteImage(imageService)))

	// Wrap the handler with logging middleware
	handler := loggingMiddleware(mux)

	return &http.Server{
		Addr:         ":8080",
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func index(sess *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sess.Current(r); ok {
			http.Redirect(w, r, "/profile", http.StatusFound)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

// authedHandler is a handler that requires an authenticated user. The user id
// is passed explicitly; handlers never read session state themselves.
type authedHandler func(w http.ResponseWriter, r *http.Request, userID int64)

// requireUser short-circuits to a login redirect when no session is present.
func requireUser(sess *session.Manager, next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := sess.Current(r)
		if !ok {
			status := http.StatusFound
			if r.Method == http.MethodPost {
				status = http.StatusSeeOther
			}
			http.Redirect(w, r, "/login", status)
			return
		}
		next(w, r, userID)
	}
}

// loggingMiddleware logs HTTP requests with structured logging
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		// Process the request
		next.ServeHTTP(wrapped, r)

		// Calculate response time
		duration := time.Since(start)

		// Log the request with structured data
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", duration.Milliseconds(),
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
