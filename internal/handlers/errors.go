package handlers

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/middleware"
	"github.com/nfrund/zina/web/src/templates/layouts"
	"github.com/nfrund/zina/web/src/templates/pages"
)

// ErrorHandler is the echo HTTPErrorHandler. It renders the Arabic error page
// inside the layout, or just the error panel for htmx requests.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := i18n.T(i18n.MsgGenericError)
	logger := middleware.FromContext(c.Request().Context())

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch {
		case code == http.StatusNotFound:
			message = i18n.T(i18n.MsgNotFound)
			if m, ok := he.Message.(string); ok && m != http.StatusText(code) {
				message = m
			}
		case code == http.StatusTooManyRequests:
			message = i18n.T(i18n.MsgTooManyRequests)
		default:
			if m, ok := he.Message.(string); ok && m != http.StatusText(code) {
				message = m
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Error("Request failed", "status", code, "error", err)
		}
	} else {
		logger.Error("Unhandled error", "error", err, "stack", string(debug.Stack()))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else if isHTMX(c) {
		err = fragment(c, code, pages.Error(code, message))
	} else {
		err = page(c, code, layouts.PageMeta{Title: strconv.Itoa(code)}, pages.Error(code, message))
	}
	if err != nil {
		logger.Error("Failed to render error page", "error", err)
	}
}
