package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/view"
)

const defaultPerMinute = 10

// RateLimiter limits each client IP to perMinute requests per minute on the
// routes it guards, with the whole minute available as a burst. Denied form
// posts are redirected back to the form with a flash message; htmx and other
// requests get a plain 429.
func RateLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}
	config := middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(perMinute) / 60),
			Burst:     perMinute,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			FromContext(c.Request().Context()).Warn("Rate limit exceeded", "client", identifier, "path", c.Request().URL.Path)
			msg := i18n.T(i18n.MsgTooManyRequests)
			if c.Request().Method != http.MethodPost || isHTMX(c) {
				return c.String(http.StatusTooManyRequests, msg)
			}
			view.SetFlashError(c, msg)
			return c.Redirect(http.StatusSeeOther, c.Request().URL.Path)
		},
	}
	return middleware.RateLimiterWithConfig(config)
}
