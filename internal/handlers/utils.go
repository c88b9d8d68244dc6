package handlers

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type contextKey string

const contextUserIDKey contextKey = "user_id"

func userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextUserIDKey).(string)
	if !ok || userID == "" {
		return "", errors.New("missing user id")
	}
	return userID, nil
}

func renderPage(w http.ResponseWriter, log zerolog.Logger, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render page")
	}
}

// serverError hides storage and template failures behind a generic 500.
// Detail goes to the log only.
func serverError(w http.ResponseWriter, log zerolog.Logger, err error) {
	log.Error().Err(err).Msg("unexpected failure")
	http.Error(w, "Something went wrong", http.StatusInternalServerError)
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
