package session

import "net/http"

// CookieName is the single session cookie used by the application.
const CookieName = "qool_session"

// Manager binds the codec to cookie transport. Confidentiality of the
// cookie rests on the transport attributes set here (HttpOnly, SameSite=Lax,
// Secure in production), integrity on the codec's signature.
type Manager struct {
	codec  *Codec
	secure bool
}

func NewManager(codec *Codec, secure bool) *Manager {
	return &Manager{codec: codec, secure: secure}
}

// Issue mints a session token for the user and sets the session cookie.
func (m *Manager) Issue(w http.ResponseWriter, userID string) error {
	token, err := m.codec.Encode(userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
		MaxAge:   int(m.codec.TTL().Seconds()),
	})
	return nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
		MaxAge:   -1,
	})
}

// UserID extracts and verifies the session cookie from the request. An
// absent, tampered, or expired cookie returns ("", false); a forged token
// is indistinguishable from no token at all.
func (m *Manager) UserID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	userID, err := m.codec.Decode(cookie.Value)
	if err != nil {
		return "", false
	}
	return userID, true
}
