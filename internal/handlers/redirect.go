package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/qoolink/server/internal/clicks"
	"github.com/qoolink/server/internal/services"
	"github.com/qoolink/server/internal/store"
)

// RedirectHandler resolves public slugs. No authentication, no side
// effects beyond the fire-and-forget click event.
type RedirectHandler struct {
	linkService *services.LinkService
	recorder    clicks.Recorder
	log         zerolog.Logger
}

func NewRedirectHandler(linkService *services.LinkService, recorder clicks.Recorder, log zerolog.Logger) *RedirectHandler {
	return &RedirectHandler{
		linkService: linkService,
		recorder:    recorder,
		log:         log,
	}
}

// Resolve redirects the visitor to the slug's destination, or answers a
// plain 404. An empty or malformed slug just misses the lookup; it is
// never a server error.
func (h *RedirectHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "*")

	destination, err := h.linkService.Resolve(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		serverError(w, h.log, err)
		return
	}

	h.recorder.Record(slug, r.Referer())
	http.Redirect(w, r, destination, http.StatusFound)
}
