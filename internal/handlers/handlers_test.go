package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qoolink/server/internal/clicks"
	"github.com/qoolink/server/internal/services"
	"github.com/qoolink/server/internal/session"
	"github.com/qoolink/server/internal/store"
	"github.com/qoolink/server/types"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]types.User
	next  int
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	r.next++
	user.ID = fmt.Sprintf("user-%d", r.next)
	r.users[user.ID] = user
	return user, nil
}

type fakeLinkRepo struct {
	mu    sync.Mutex
	links []types.Link
	next  int
}

func (r *fakeLinkRepo) Create(ctx context.Context, link types.Link) (types.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.links {
		if existing.Slug == link.Slug {
			return types.Link{}, store.ErrDuplicate
		}
	}
	r.next++
	link.ID = fmt.Sprintf("link-%d", r.next)
	link.CreatedAt = time.Now()
	r.links = append(r.links, link)
	return link, nil
}

func (r *fakeLinkRepo) ListByOwner(ctx context.Context, userID string) ([]types.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []types.Link
	for i := len(r.links) - 1; i >= 0; i-- {
		if r.links[i].UserID == userID {
			out = append(out, r.links[i])
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) FindURLBySlug(ctx context.Context, slug string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, link := range r.links {
		if link.Slug == slug {
			return link.URL, nil
		}
	}
	return "", store.ErrNotFound
}

// newTestRouter wires the full route table the way the server does, over
// in-memory repositories.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	codec, err := session.NewCodec(testSecret, session.DefaultTTL)
	require.NoError(t, err)
	sessions := session.NewManager(codec, false)

	log := zerolog.Nop()
	authService := services.NewAuthService(&fakeUserRepo{users: make(map[string]types.User)})
	linkService := services.NewLinkService(&fakeLinkRepo{})

	authHandler := NewAuthHandler(authService, sessions, log)
	dashboardHandler := NewDashboardHandler(authService, linkService, sessions, log)
	redirectHandler := NewRedirectHandler(linkService, clicks.NoopRecorder{}, log)

	router := chi.NewRouter()
	router.Get("/healthz", Healthz)
	AuthRouter(router, authHandler)
	DashboardRouter(router, dashboardHandler, authHandler.RequireSession)
	router.Get("/*", redirectHandler.Resolve)
	return router
}

func postForm(t *testing.T, router *chi.Mux, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, router *chi.Mux, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signupForm() url.Values {
	return url.Values{
		"email":           {"jane@example.com"},
		"password":        {"hunter2"},
		"confirmPassword": {"hunter2"},
		"name":            {"Jane"},
	}
}

func signUp(t *testing.T, router *chi.Mux) *http.Cookie {
	t.Helper()
	rec := postForm(t, router, "/signup", signupForm(), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, session.CookieName, cookies[0].Name)
	return cookies[0]
}

func body(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	data, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(data)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)
	rec := get(t, router, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboardRequiresSession(t *testing.T) {
	router := newTestRouter(t)

	// No cookie.
	rec := get(t, router, "/dashboard", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// Tampered cookie is treated the same as none, never a 500 and never
	// dashboard content.
	rec = get(t, router, "/dashboard", &http.Cookie{Name: session.CookieName, Value: "forged"})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestSignupLoginFlow(t *testing.T) {
	router := newTestRouter(t)
	cookie := signUp(t, router)

	rec := get(t, router, "/dashboard", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body(t, rec), "Jane")

	// Login page skips to the dashboard for an authenticated visitor.
	rec = get(t, router, "/login", cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestSignupDuplicateEmail(t *testing.T) {
	router := newTestRouter(t)
	signUp(t, router)

	rec := postForm(t, router, "/signup", signupForm(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body(t, rec), "Email is already taken")
}

func TestSignupValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	form := signupForm()
	form.Set("email", "not-an-email")
	form.Set("confirmPassword", "different")

	rec := postForm(t, router, "/signup", form, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	page := body(t, rec)
	assert.Contains(t, page, "The email should be valid")
	assert.Contains(t, page, "not equal to the password")
}

func TestLoginSetsSessionCookie(t *testing.T) {
	router := newTestRouter(t)
	signUp(t, router)

	rec := postForm(t, router, "/login", url.Values{
		"email":    {"jane@example.com"},
		"password": {"hunter2"},
	}, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginFailureIsOpaque(t *testing.T) {
	router := newTestRouter(t)
	signUp(t, router)

	wrongPassword := postForm(t, router, "/login", url.Values{
		"email":    {"jane@example.com"},
		"password": {"wrongpassword"},
	}, nil)
	unknownEmail := postForm(t, router, "/login", url.Values{
		"email":    {"nouser@example.com"},
		"password": {"anything"},
	}, nil)

	assert.Equal(t, http.StatusOK, wrongPassword.Code)
	assert.Equal(t, http.StatusOK, unknownEmail.Code)
	assert.Contains(t, body(t, wrongPassword), "Invalid email or password")
	assert.Empty(t, wrongPassword.Result().Cookies())
	assert.Empty(t, unknownEmail.Result().Cookies())
}

func TestLogoutClearsSession(t *testing.T) {
	router := newTestRouter(t)
	cookie := signUp(t, router)

	rec := postForm(t, router, "/logout", nil, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func createLink(t *testing.T, router *chi.Mux, cookie *http.Cookie, slug, destination string) *httptest.ResponseRecorder {
	t.Helper()
	return postForm(t, router, "/dashboard", url.Values{
		"title":   {"Test link"},
		"url":     {destination},
		"slug":    {slug},
		"publish": {"on"},
	}, cookie)
}

func TestCreateLinkAndResolve(t *testing.T) {
	router := newTestRouter(t)
	cookie := signUp(t, router)

	rec := createLink(t, router, cookie, "abc", "https://example.com")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = get(t, router, "/dashboard", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body(t, rec), "qool.ink/abc")

	// Public resolution needs no session.
	rec = get(t, router, "/abc", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Location"))

	rec = get(t, router, "/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateLinkValidationErrors(t *testing.T) {
	router := newTestRouter(t)
	cookie := signUp(t, router)

	rec := postForm(t, router, "/dashboard", url.Values{
		"title": {""},
		"url":   {"not a url"},
		"slug":  {""},
	}, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	page := body(t, rec)
	assert.Contains(t, page, "Please provide a title")
	assert.Contains(t, page, "Please provide a valid URL")
	assert.Contains(t, page, "Please provide a slug")
}

func TestCreateLinkSlugTaken(t *testing.T) {
	router := newTestRouter(t)
	cookie := signUp(t, router)

	rec := createLink(t, router, cookie, "abc", "https://example.com")
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = createLink(t, router, cookie, "abc", "https://example.org")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body(t, rec), "Slug is already taken")
}
