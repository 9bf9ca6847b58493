// Package devapi is an in-memory implementation of the upstream store REST
// API. It backs local development and the end-to-end tests of the
// storefront's API client.
package devapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/middleware"
)

const (
	userIDKey    = "devapi.user_id"
	postPageSize = 6
	minPassword  = 8
)

// API serves the REST contract under /api.
type API struct {
	E      *echo.Echo
	store  *Store
	tokens *Tokens
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, apiError{Code: code, Message: message})
}

// New builds the API around store.
func New(store *Store, tokens *Tokens) *API {
	a := &API{E: echo.New(), store: store, tokens: tokens}
	a.E.HideBanner = true
	a.E.Use(echomw.Recover())
	a.E.Use(echomw.RequestID())
	a.E.Use(middleware.Logger)

	g := a.E.Group("/api")
	g.GET("/products", a.listProducts)
	g.GET("/products/search", a.searchProducts)
	g.GET("/products/:id", a.getProduct)
	g.GET("/posts", a.listPosts)
	g.GET("/posts/:slug", a.getPost)

	g.POST("/auth/login", a.login)
	g.POST("/auth/register", a.register)
	g.POST("/auth/refresh", a.refresh)
	g.POST("/auth/logout", a.logout)
	g.POST("/auth/forgot-password", a.forgotPassword)
	g.POST("/auth/reset-password", a.resetPassword)

	g.GET("/users/me", a.me, a.bearer)
	g.PUT("/users/me", a.updateMe, a.bearer)
	g.PUT("/users/me/password", a.changePassword, a.bearer)
	g.GET("/notifications", a.listNotifications, a.bearer)
	g.POST("/notifications/read-all", a.markAllRead, a.bearer)
	g.POST("/notifications/:id/read", a.markRead, a.bearer)
	return a
}

// Serve listens on addr until ctx is done.
func (a *API) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Dev API listening", "addr", addr)
		if err := a.E.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.E.Shutdown(shutdownCtx)
}

func (a *API) bearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if !ok || raw == "" {
			return fail(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		}
		userID, err := a.tokens.Verify(raw)
		if err != nil {
			return fail(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
		}
		if _, ok := a.store.User(userID); !ok {
			return fail(c, http.StatusUnauthorized, "unauthorized", "unknown user")
		}
		c.Set(userIDKey, userID)
		return next(c)
	}
}

func currentUserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

func intParam(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

func (a *API) listProducts(c echo.Context) error {
	category := c.QueryParam("category")
	if category != "" {
		if _, ok := domain.CategoryBySlug(category); !ok {
			return fail(c, http.StatusNotFound, "not_found", "unknown category")
		}
	}
	return c.JSON(http.StatusOK, a.store.Products(category, c.QueryParam("sort"), intParam(c, "page"), intParam(c, "limit")))
}

func (a *API) searchProducts(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return fail(c, http.StatusBadRequest, "validation", "q is required")
	}
	return c.JSON(http.StatusOK, map[string]any{"items": a.store.Search(q, intParam(c, "limit"))})
}

func (a *API) getProduct(c echo.Context) error {
	p, ok := a.store.Product(c.Param("id"))
	if !ok {
		return fail(c, http.StatusNotFound, "not_found", "product not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (a *API) listPosts(c echo.Context) error {
	return c.JSON(http.StatusOK, a.store.Posts(intParam(c, "page"), postPageSize))
}

func (a *API) getPost(c echo.Context) error {
	p, ok := a.store.Post(c.Param("slug"))
	if !ok {
		return fail(c, http.StatusNotFound, "not_found", "post not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (a *API) signedIn(c echo.Context, status int, u domain.User) error {
	access, err := a.tokens.Issue(u.ID)
	if err != nil {
		return err
	}
	return c.JSON(status, domain.AuthResult{
		User:   u,
		Tokens: domain.Tokens{AccessToken: access, RefreshToken: a.store.IssueRefresh(u.ID)},
	})
}

func (a *API) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "validation", "email and password are required")
	}
	u, err := a.store.Authenticate(req.Email, req.Password)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	}
	return a.signedIn(c, http.StatusOK, u)
}

func (a *API) register(c echo.Context) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "validation", "invalid body")
	}
	if msg := checkRegistration(req.Name, req.Email, req.Password); msg != "" {
		return fail(c, http.StatusBadRequest, "validation", msg)
	}
	u, err := a.store.Register(strings.TrimSpace(req.Name), req.Email, req.Password)
	if errors.Is(err, errEmailTaken) {
		return fail(c, http.StatusConflict, "user_exists", "email already registered")
	}
	if err != nil {
		return err
	}
	return a.signedIn(c, http.StatusCreated, u)
}

func checkRegistration(name, email, password string) string {
	if n := utf8.RuneCountInString(strings.TrimSpace(name)); n < 2 || n > 80 {
		return "name must be 2 to 80 characters"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "invalid email"
	}
	if len(password) < minPassword {
		return "password too short"
	}
	return ""
}

func (a *API) refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return fail(c, http.StatusBadRequest, "validation", "refresh_token is required")
	}
	u, next, err := a.store.Rotate(req.RefreshToken)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid_refresh_token", "refresh token is invalid or expired")
	}
	access, err := a.tokens.Issue(u.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.AuthResult{User: u, Tokens: domain.Tokens{AccessToken: access, RefreshToken: next}})
}

func (a *API) logout(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.Bind(&req)
	if req.RefreshToken != "" {
		a.store.Revoke(req.RefreshToken)
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *API) forgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return fail(c, http.StatusBadRequest, "validation", "email is required")
	}
	a.store.RequestReset(req.Email)
	return c.NoContent(http.StatusAccepted)
}

func (a *API) resetPassword(c echo.Context) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return fail(c, http.StatusBadRequest, "invalid_reset_token", "token is required")
	}
	if len(req.Password) < minPassword {
		return fail(c, http.StatusBadRequest, "validation", "password too short")
	}
	if err := a.store.Reset(req.Token, req.Password); err != nil {
		if errors.Is(err, errBadToken) {
			return fail(c, http.StatusBadRequest, "invalid_reset_token", "reset token is invalid or expired")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *API) me(c echo.Context) error {
	u, ok := a.store.User(currentUserID(c))
	if !ok {
		return fail(c, http.StatusNotFound, "not_found", "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

func (a *API) updateMe(c echo.Context) error {
	var upd domain.ProfileUpdate
	if err := c.Bind(&upd); err != nil {
		return fail(c, http.StatusBadRequest, "validation", "invalid body")
	}
	upd.Name = strings.TrimSpace(upd.Name)
	if err := upd.Validate(); err != nil {
		return fail(c, http.StatusUnprocessableEntity, "validation", err.Error())
	}
	u, ok := a.store.UpdateProfile(currentUserID(c), upd)
	if !ok {
		return fail(c, http.StatusNotFound, "not_found", "user not found")
	}
	return c.JSON(http.StatusOK, u)
}

// changePassword answers a wrong current password with 400, not 401, so
// clients do not mistake it for an expired token.
func (a *API) changePassword(c echo.Context) error {
	var req struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "validation", "invalid body")
	}
	if len(req.New) < minPassword || req.New == req.Current {
		return fail(c, http.StatusUnprocessableEntity, "validation", "new password is too short or unchanged")
	}
	if err := a.store.ChangePassword(currentUserID(c), req.Current, req.New); err != nil {
		if errors.Is(err, errBadCredentials) {
			return fail(c, http.StatusBadRequest, "invalid_credentials", "current password is incorrect")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *API) listNotifications(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"items": a.store.Notifications(currentUserID(c))})
}

func (a *API) markRead(c echo.Context) error {
	if !a.store.MarkRead(currentUserID(c), c.Param("id")) {
		return fail(c, http.StatusNotFound, "not_found", "notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *API) markAllRead(c echo.Context) error {
	a.store.MarkAllRead(currentUserID(c))
	return c.NoContent(http.StatusNoContent)
}
