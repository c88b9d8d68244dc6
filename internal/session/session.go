// Package session implements stateless signed-token authentication: the
// client holds an HS256-signed token carrying a single claim (the user id),
// transported in an HttpOnly cookie. There is no server-side session store.
package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the fixed validity window for session tokens.
const DefaultTTL = 30 * 24 * time.Hour

// ErrInvalidToken is returned by Decode for any token that cannot be
// accepted: bad signature, expired, malformed, wrong algorithm, or missing
// subject. Callers must treat all of these as "no session".
var ErrInvalidToken = errors.New("invalid session token")

// Codec turns a user id into a signed token and back. The signing secret
// is injected at construction and held for the process lifetime.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec constructs a Codec. An empty secret is a fatal misconfiguration
// and is rejected here so the server never starts without one.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the token validity window.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode signs a token whose subject is the user id.
func (c *Codec) Encode(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies the token and returns the user id it carries. It fails
// closed: any verification ambiguity yields ErrInvalidToken and no claims.
func (c *Codec) Decode(tokenString string) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
