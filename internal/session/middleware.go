package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CookieName is the cookie carrying the opaque session ID.
const CookieName = "nako_session"

const contextKey = "nako.session"

// Middleware resolves or establishes the client session and stashes it in the
// echo context. The cookie holds only the opaque ID; all state lives in the
// store.
func Middleware(store Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					sid = cookie.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     CookieName,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			c.Set(contextKey, New(sid, store))
			return next(c)
		}
	}
}

// FromContext returns the session established by [Middleware], or nil if the
// middleware did not run.
func FromContext(c echo.Context) *Session {
	if sess, ok := c.Get(contextKey).(*Session); ok {
		return sess
	}
	return nil
}
