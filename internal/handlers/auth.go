package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/qoolink/server/internal/services"
	"github.com/qoolink/server/internal/session"
)

// invalidCredentialsMessage is deliberately the same for an unknown email
// and a wrong password, so the form never reveals which one it was.
const invalidCredentialsMessage = "Invalid email or password"

// AuthHandler serves the login, signup, and logout surface.
type AuthHandler struct {
	authService *services.AuthService
	sessions    *session.Manager
	log         zerolog.Logger
}

func NewAuthHandler(authService *services.AuthService, sessions *session.Manager, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		log:         log,
	}
}

// AuthRouter registers the auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Get("/login", handler.LoginPage)
	r.Post("/login", handler.Login)
	r.Get("/signup", handler.SignupPage)
	r.Post("/signup", handler.Signup)
	r.Post("/logout", handler.Logout)
}

// RequireSession gates protected pages. A request without a valid session
// is not an error, it is a navigation: redirect to /login, never 500.
func (h *AuthHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := h.sessions.UserID(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), contextUserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type authPage struct {
	Email  string
	Name   string
	Errors map[string]string
}

// LoginPage renders the login form, or skips straight to the dashboard
// when the visitor already has a session.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.UserID(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	renderPage(w, h.log, "login.html", authPage{})
}

// Login verifies submitted credentials and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.authService.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			renderPage(w, h.log, "login.html", authPage{
				Email:  email,
				Errors: map[string]string{"credentials": invalidCredentialsMessage},
			})
			return
		}
		serverError(w, h.log, err)
		return
	}

	if err := h.sessions.Issue(w, user.ID); err != nil {
		serverError(w, h.log, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// SignupPage renders the signup form.
func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.UserID(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	renderPage(w, h.log, "signup.html", authPage{})
}

// Signup creates an account and starts a session.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	input := services.SignupInput{
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
		Name:            r.PostFormValue("name"),
	}

	user, err := h.authService.Signup(r.Context(), input)
	if err != nil {
		page := authPage{Email: input.Email, Name: input.Name}

		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			page.Errors = verr.Fields
		case errors.Is(err, services.ErrEmailTaken):
			page.Errors = map[string]string{"email": "Email is already taken"}
		default:
			serverError(w, h.log, err)
			return
		}
		renderPage(w, h.log, "signup.html", page)
		return
	}

	if err := h.sessions.Issue(w, user.ID); err != nil {
		serverError(w, h.log, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout destroys the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
