// Package session keeps the customer's client-side state (tokens, the current
// user, favorites) in signed cookies. Values are stored as JSON blobs.
package session

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const maxAge = 86400 * 30 // 30 days

// NewStore creates the cookie store shared by every session of the app.
func NewStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Middleware installs store for the request, making session.Get work.
func Middleware(store sessions.Store) echo.MiddlewareFunc {
	return session.Middleware(store)
}

// Get returns the named session for the current request.
func Get(name string, c echo.Context) (*sessions.Session, error) {
	return session.Get(name, c)
}

// Load decodes the JSON blob stored under key. ok is false when the key is
// missing or holds something undecodable.
func Load[T any](sess *sessions.Session, key string) (v T, ok bool) {
	raw, isString := sess.Values[key].(string)
	if !isString || raw == "" {
		return v, false
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, false
	}
	return v, true
}

// Put stores v under key as a JSON blob. The session still has to be saved.
func Put(sess *sessions.Session, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	sess.Values[key] = string(b)
	return nil
}

// Save writes the session cookie to the response.
func Save(sess *sessions.Session, c echo.Context) error {
	return sess.Save(c.Request(), c.Response())
}
