package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/pavel-fokin/images-stash/internal/images"
)

func listImages(imageService *images.Service) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, userID int64) {
		imgs, err := imageService.List(userID)
		if err != nil {
			slog.Error("List images failed", "error", err, "user_id", userID)
			http.Error(w, "Failed to list images", http.StatusInternalServerError)
			return
		}

		renderPage(w, "images.html", pageData{
			Message: r.URL.Query().Get("msg"),
			Images:  imgs,
		})
	}
}

func uploadImage(cfg *Config, imageService *images.Service) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, userID int64) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxSize)

		if err := r.ParseMultipartForm(cfg.MaxSize); err != nil {
			redirectWithMessage(w, r, "Upload failed")
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			redirectWithMessage(w, r, "No file selected")
			return
		}
		defer file.Close()

		// Browsers submit an empty part when no file was picked.
		if header.Filename == "" || header.Size == 0 {
			redirectWithMessage(w, r, "No file selected")
			return
		}

		img, err := imageService.Upload(userID, header.Filename, file)
		if err != nil {
			if errors.Is(err, images.ErrInvalidFileType) {
				redirectWithMessage(w, r, "Invalid file type")
				return
			}
			slog.Error("Upload failed", "error", err, "user_id", userID, "filename", header.Filename)
			redirectWithMessage(w, r, "Upload failed")
			return
		}

		slog.Info("Image uploaded", "user_id", userID, "image_id", img.ID)
		redirectWithMessage(w, r, "Uploaded")
	}
}

func imageFile(imageService *images.Service) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, userID int64) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		img, content, err := imageService.Open(userID, id)
		if err != nil {
			// Absent and non-owned answer identically so the response shape
			// never reveals another user's image ids.
			if errors.Is(err, images.ErrNotFound) || errors.Is(err, images.ErrForbidden) {
				http.NotFound(w, r)
				return
			}
			slog.Error("Image download failed", "error", err, "image_id", id)
			http.Error(w, "Download failed", http.StatusInternalServerError)
			return
		}
		defer content.Close()

		contentType := mime.TypeByExtension(filepath.Ext(img.StoredFilename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("inline; filename=%q", img.OriginalFilename))

		w.WriteHeader(http.StatusOK)
		io.Copy(w, content)
	}
}

func deleteImage(imageService *images.Service) authedHandler {
	return func(w http.ResponseWriter, r *http.Request, userID int64) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			redirectWithMessage(w, r, "Image not found")
			return
		}

		if err := imageService.Delete(userID, id); err != nil {
			// A missing image is benign; a foreign one gets the same message.
			if errors.Is(err, images.ErrNotFound) || errors.Is(err, images.ErrForbidden) {
				redirectWithMessage(w, r, "Image not found")
				return
			}
			slog.Error("Delete failed", "error", err, "image_id", id)
			redirectWithMessage(w, r, "Delete failed")
			return
		}

		slog.Info("Image deleted", "user_id", userID, "image_id", id)
		redirectWithMessage(w, r, "Deleted")
	}
}

func redirectWithMessage(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/images?msg="+url.QueryEscape(msg), http.StatusSeeOther)
}
