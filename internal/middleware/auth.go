package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/session"
)

const UserContextKey = "user"

// RequireAuth protects routes that need a signed-in customer. Anyone else is
// sent to the login page with the current path as the next parameter.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth, err := session.GetAuth(c)
		if auth == nil {
			return err
		}
		user, ok := auth.CurrentUser()
		if !ok {
			return RedirectToLogin(c)
		}
		c.Set(UserContextKey, user)
		return next(c)
	}
}

// CurrentUser returns the customer stored by RequireAuth.
func CurrentUser(c echo.Context) (domain.User, bool) {
	u, ok := c.Get(UserContextKey).(domain.User)
	return u, ok
}

// RedirectToLogin sends the customer to the login page. GET requests come
// back to where they were after signing in. htmx requests get an
// HX-Redirect so the whole page navigates instead of swapping the login
// form into a fragment.
func RedirectToLogin(c echo.Context) error {
	next := ""
	if c.Request().Method == http.MethodGet && !isHTMX(c) {
		next = c.Request().URL.RequestURI()
	}
	target := LoginURL(next)
	if isHTMX(c) {
		c.Response().Header().Set("HX-Redirect", target)
		return c.NoContent(http.StatusUnauthorized)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// LoginURL is the login page, carrying next when it is a local path.
func LoginURL(next string) string {
	if next = SafeNext(next); next == "" || next == "/" {
		return "/login"
	}
	return "/login?" + url.Values{"next": {next}}.Encode()
}

// SafeNext returns next if it is a path on this site and "" otherwise, so a
// crafted login link cannot bounce the customer to another host.
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	return next
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true" && c.Request().Header.Get("HX-Boosted") != "true"
}
