package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	g "maragu.dev/gomponents"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/favorites"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/middleware"
	"github.com/nfrund/zina/internal/session"
	"github.com/nfrund/zina/internal/view"
	"github.com/nfrund/zina/web/src/templates/layouts"
)

// page wraps content in the base layout. The session-derived parts of meta
// (signed-in state, favorites count) are filled in here so handlers only set
// what is specific to the page.
func page(c echo.Context, status int, meta layouts.PageMeta, content g.Node) error {
	if auth, _ := session.GetAuth(c); auth != nil {
		if u, ok := auth.CurrentUser(); ok {
			meta.SignedIn = true
			meta.UserName = u.DisplayName()
		}
	}
	if favs, _ := favorites.Open(c); favs != nil {
		meta.FavoritesCount = favs.Count()
	}
	return c.Render(status, "", layouts.Base(meta, view.GetFlashData(c), content))
}

// fragment renders an htmx partial without the layout.
func fragment(c echo.Context, status int, node g.Node) error {
	return c.Render(status, "", node)
}

// isHTMX reports whether the request wants a fragment. Boosted navigation
// still gets full pages.
func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true" && c.Request().Header.Get("HX-Boosted") != "true"
}

// redirect is a See Other redirect, the answer to every successful form post.
func redirect(c echo.Context, to string) error {
	return c.Redirect(http.StatusSeeOther, to)
}

// back returns to the page the form was posted from when it is on this
// site, and to fallback otherwise.
func back(c echo.Context, fallback string) error {
	if ref := c.Request().Referer(); ref != "" {
		if u, err := c.Request().URL.Parse(ref); err == nil && u.Host == c.Request().Host {
			if next := middleware.SafeNext(u.RequestURI()); next != "" {
				return redirect(c, next)
			}
		}
	}
	return redirect(c, fallback)
}

// flashError logs unexpected failures and flashes the customer-facing text.
func flashError(c echo.Context, err error, msg string) {
	if !expected(err) {
		middleware.FromContext(c.Request().Context()).Error(msg, "error", err)
	}
	view.SetFlashError(c, i18n.ErrorMessage(err))
}

// expected errors are the customer's doing and not worth an error log.
func expected(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrInvalidCredentials) ||
		errors.Is(err, domain.ErrUserAlreadyExists) ||
		errors.Is(err, domain.ErrInvalidResetToken) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrUnauthorized)
}

// sessionExpired handles ErrUnauthorized from an authenticated call: the
// tokens are already gone, so the customer signs in again and comes back.
func sessionExpired(c echo.Context) error {
	if auth, _ := session.GetAuth(c); auth != nil {
		_ = auth.Clear()
	}
	view.SetFlashError(c, i18n.T(i18n.MsgSessionExpired))
	return middleware.RedirectToLogin(c)
}

// pageParam reads the 1-based page query parameter.
func pageParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// notFound renders the 404 page through the central error handler.
func notFound(err error) error {
	return echo.NewHTTPError(http.StatusNotFound, i18n.T(i18n.MsgNotFound)).SetInternal(err)
}

// upstreamError maps a failed upstream read onto an HTTP error for the
// central error handler.
func upstreamError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return notFound(err)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, i18n.T(i18n.MsgUpstreamDown)).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusBadGateway, i18n.T(i18n.MsgGenericError)).SetInternal(err)
	}
}
