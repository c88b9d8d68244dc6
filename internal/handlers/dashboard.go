package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/qoolink/server/internal/services"
	"github.com/qoolink/server/internal/session"
	"github.com/qoolink/server/internal/store"
	"github.com/qoolink/server/types"
)

// DashboardHandler serves the authenticated link dashboard.
type DashboardHandler struct {
	authService *services.AuthService
	linkService *services.LinkService
	sessions    *session.Manager
	log         zerolog.Logger
}

func NewDashboardHandler(
	authService *services.AuthService,
	linkService *services.LinkService,
	sessions *session.Manager,
	log zerolog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		authService: authService,
		linkService: linkService,
		sessions:    sessions,
		log:         log,
	}
}

// DashboardRouter registers the protected dashboard routes.
func DashboardRouter(r chi.Router, handler *DashboardHandler, requireSession func(http.Handler) http.Handler) {
	r.With(requireSession).Get("/dashboard", handler.Show)
	r.With(requireSession).Post("/dashboard", handler.CreateLink)
}

type linkForm struct {
	Title   string
	URL     string
	Slug    string
	Publish bool
}

type dashboardPage struct {
	User   types.User
	Links  []types.Link
	Form   linkForm
	Errors map[string]string
}

// Show lists the user's links, newest first.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, linkForm{}, nil)
}

// CreateLink validates the quick-creation form and inserts the link. A
// successful create redirects back to GET so a refresh never resubmits.
func (h *DashboardHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := linkForm{
		Title:   r.PostFormValue("title"),
		URL:     r.PostFormValue("url"),
		Slug:    r.PostFormValue("slug"),
		Publish: r.PostFormValue("publish") == "on",
	}

	_, err = h.linkService.Create(r.Context(), services.CreateLinkInput{
		Slug:    form.Slug,
		URL:     form.URL,
		Title:   form.Title,
		Publish: form.Publish,
		UserID:  userID,
	})
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			h.render(w, r, form, verr.Fields)
		case errors.Is(err, services.ErrSlugTaken):
			h.render(w, r, form, map[string]string{"slug": "Slug is already taken"})
		default:
			serverError(w, h.log, err)
		}
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, form linkForm, fieldErrors map[string]string) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		// A signed session pointing at a deleted user is treated as no
		// session at all.
		if errors.Is(err, store.ErrNotFound) {
			h.sessions.Clear(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		serverError(w, h.log, err)
		return
	}

	links, err := h.linkService.ListByOwner(r.Context(), userID)
	if err != nil {
		serverError(w, h.log, err)
		return
	}

	renderPage(w, h.log, "dashboard.html", dashboardPage{
		User:   user,
		Links:  links,
		Form:   form,
		Errors: fieldErrors,
	})
}
