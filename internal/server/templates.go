package server

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/pavel-fokin/images-stash/internal/images"
)

//go:embed html/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "html/*.html"))

// pageData carries everything the templates render
type pageData struct {
	Message  string
	Username string
	Images   []*images.Image
}

func renderPage(w http.ResponseWriter, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("Failed to render template", "template", name, "error", err)
	}
}
