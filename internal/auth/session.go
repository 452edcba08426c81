package auth

import (
	"net/http"
	"time"
)

const (
	SessionCookie = "sf_session"

	DefaultSessionTTL = 24 * time.Hour
)

// Sessions issues and resolves the signed session cookie. It is the
// session provider consumed by the rest of the HTTP surface: everything
// downstream only ever sees the resolved user ID.
type Sessions struct {
	tokens *TokenMaker
	ttl    time.Duration
	secure bool
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		tokens: NewTokenMaker(secret),
		ttl:    ttl,
		secure: secure,
	}
}

func (s *Sessions) Issue(w http.ResponseWriter, userID string) error {
	tok, err := s.tokens.New(userID, s.ttl)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ResolveUserID reports the user behind the request's session cookie, or
// false for a missing, tampered or expired cookie.
func (s *Sessions) ResolveUserID(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}

	claims, err := s.tokens.Parse(c.Value)
	if err != nil || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}
