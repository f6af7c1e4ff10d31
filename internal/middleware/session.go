package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"storefront-backend/internal/identity"
)

const sessionCookieName = "storefront_session"

// cookieSessionStore backs guest identities with a browser cookie. A guest
// keeps the same cart across requests only as long as the cookie survives.
type cookieSessionStore struct {
	c echo.Context
}

func NewCookieSessionStore(c echo.Context) identity.SessionStore {
	return &cookieSessionStore{c: c}
}

func (s *cookieSessionStore) Existing() (string, bool) {
	cookie, err := s.c.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (s *cookieSessionStore) Ensure() string {
	if key, ok := s.Existing(); ok {
		return key
	}

	key := uuid.NewString()
	s.c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})

	return key
}

// ResolveBuyer applies the identity resolution order for a request:
// authenticated user id, then an explicitly supplied identity key, then the
// guest session cookie (created if absent).
func ResolveBuyer(c echo.Context, explicitKey string) identity.BuyerIdentity {
	return identity.Resolve(AuthenticatedUserID(c), explicitKey, NewCookieSessionStore(c))
}
