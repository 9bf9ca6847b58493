package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/apiclient"
	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/events"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/middleware"
	"github.com/nfrund/zina/internal/pubsub"
	"github.com/nfrund/zina/internal/session"
	"github.com/nfrund/zina/internal/view"
	"github.com/nfrund/zina/internal/view/dto/auth"
	"github.com/nfrund/zina/web/src/templates/layouts"
	"github.com/nfrund/zina/web/src/templates/pages"
)

// AuthAPI is the part of the upstream API used for signing in and out.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (domain.AuthResult, error)
	Logout(ctx context.Context, ts apiclient.TokenStore) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	api AuthAPI
	bus pubsub.Publisher
	now func() time.Time
}

// NewAuthHandler creates a new AuthHandler. bus may be nil.
func NewAuthHandler(api AuthAPI, bus pubsub.Publisher) *AuthHandler {
	return &AuthHandler{api: api, bus: bus, now: time.Now}
}

// LoginGet renders the login page (GET /login). Signed-in customers go
// straight on to where they were headed.
func (h *AuthHandler) LoginGet(c echo.Context) error {
	next := middleware.SafeNext(c.QueryParam("next"))
	if signedIn(c) {
		return redirect(c, orDefault(next, "/account"))
	}
	data := auth.LoginData{
		Email: view.TakeFormValue(c, "email"),
		Next:  next,
	}
	return page(c, http.StatusOK, layouts.PageMeta{Title: "تسجيل الدخول", Active: "account"}, pages.Login(data))
}

// LoginPost handles the login form.
func (h *AuthHandler) LoginPost(c echo.Context) error {
	next := middleware.SafeNext(c.FormValue("next"))
	var creds domain.Credentials
	if err := bindForm(c, &creds, &creds.Email); err != nil {
		return h.loginFailed(c, creds.Email, next, err)
	}

	res, err := h.api.Login(c.Request().Context(), creds)
	if err != nil {
		return h.loginFailed(c, creds.Email, next, err)
	}
	if err := h.signIn(c, res, false); err != nil {
		return err
	}

	view.SetFlashSuccess(c, i18n.T(i18n.MsgLoginSuccess, res.User.DisplayName()))
	return redirect(c, orDefault(next, "/account"))
}

func (h *AuthHandler) loginFailed(c echo.Context, email, next string, err error) error {
	flashError(c, err, "Login failed")
	view.KeepFormValue(c, "email", email)
	return redirect(c, middleware.LoginURL(next))
}

// RegisterGet renders the registration page (GET /register).
func (h *AuthHandler) RegisterGet(c echo.Context) error {
	if signedIn(c) {
		return redirect(c, "/account")
	}
	data := auth.RegisterData{
		Name:  view.TakeFormValue(c, "name"),
		Email: view.TakeFormValue(c, "email"),
	}
	return page(c, http.StatusOK, layouts.PageMeta{Title: "إنشاء حساب", Active: "account"}, pages.Register(data))
}

// RegisterPost creates the account upstream and signs the customer in.
func (h *AuthHandler) RegisterPost(c echo.Context) error {
	var reg domain.Registration
	err := bindForm(c, &reg, &reg.Name, &reg.Email)
	var res domain.AuthResult
	if err == nil {
		res, err = h.api.Register(c.Request().Context(), reg)
	}
	if err != nil {
		flashError(c, err, "Registration failed")
		view.KeepFormValue(c, "name", reg.Name)
		view.KeepFormValue(c, "email", reg.Email)
		return redirect(c, "/register")
	}

	if err := h.signIn(c, res, true); err != nil {
		return err
	}
	view.SetFlashSuccess(c, i18n.T(i18n.MsgRegisterSuccess))
	return redirect(c, "/account")
}

func (h *AuthHandler) signIn(c echo.Context, res domain.AuthResult, registered bool) error {
	a, err := session.GetAuth(c)
	if a == nil {
		return err
	}
	if err := a.SignIn(res); err != nil {
		return err
	}
	ctx := c.Request().Context()
	middleware.FromContext(ctx).Info("Customer signed in", "user_id", res.User.ID, "registered", registered)
	if h.bus != nil {
		payload := events.SignedInPayload{Registered: registered, At: h.now()}
		if err := pubsub.Publish(ctx, h.bus, events.SignedIn, res.User.ID, payload); err != nil {
			middleware.FromContext(ctx).Warn("Failed to publish sign-in", "error", err)
		}
	}
	return nil
}

// Logout revokes the tokens upstream (best effort) and clears the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	a, err := session.GetAuth(c)
	if a == nil {
		return err
	}
	if a.SignedIn() {
		if err := h.api.Logout(c.Request().Context(), a); err != nil {
			middleware.FromContext(c.Request().Context()).Warn("Upstream logout failed", "error", err)
		}
	}
	if err := a.Clear(); err != nil {
		return err
	}
	view.SetFlashSuccess(c, i18n.T(i18n.MsgLogoutSuccess))
	return redirect(c, "/")
}

// ForgotPasswordGet renders the forgot password page.
func (h *AuthHandler) ForgotPasswordGet(c echo.Context) error {
	data := auth.ForgotPasswordData{Email: view.TakeFormValue(c, "email")}
	return page(c, http.StatusOK, layouts.PageMeta{Title: "استعادة كلمة المرور"}, pages.ForgotPassword(data))
}

// ForgotPasswordPost asks the API for a reset link. The answer is the same
// whether or not the email is registered.
func (h *AuthHandler) ForgotPasswordPost(c echo.Context) error {
	var form domain.ForgotPassword
	if err := bindForm(c, &form, &form.Email); err != nil {
		flashError(c, err, "Invalid forgot password form")
		view.KeepFormValue(c, "email", form.Email)
		return redirect(c, "/forgot-password")
	}

	err := h.api.ForgotPassword(c.Request().Context(), form.Email)
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		flashError(c, err, "Forgot password request failed")
		view.KeepFormValue(c, "email", form.Email)
		return redirect(c, "/forgot-password")
	}
	if err != nil && !expected(err) {
		middleware.FromContext(c.Request().Context()).Error("Forgot password request failed", "error", err)
	}

	view.SetFlashSuccess(c, i18n.T(i18n.MsgForgotSent))
	return redirect(c, "/login")
}

// ResetPasswordGet renders the reset form for the token in the link.
func (h *AuthHandler) ResetPasswordGet(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		view.SetFlashError(c, i18n.T(i18n.MsgResetTokenMissing))
		return redirect(c, "/forgot-password")
	}
	return page(c, http.StatusOK, layouts.PageMeta{Title: "تعيين كلمة مرور جديدة"}, pages.ResetPassword(auth.ResetPasswordData{Token: token}))
}

// ResetPasswordPost sets the new password.
func (h *AuthHandler) ResetPasswordPost(c echo.Context) error {
	var form domain.PasswordReset
	if err := bindForm(c, &form); err != nil {
		if form.Token == "" {
			view.SetFlashError(c, i18n.T(i18n.MsgResetTokenMissing))
			return redirect(c, "/forgot-password")
		}
		flashError(c, err, "Invalid reset form")
		return redirect(c, "/reset-password?"+url.Values{"token": {form.Token}}.Encode())
	}

	if err := h.api.ResetPassword(c.Request().Context(), form.Token, form.Password); err != nil {
		flashError(c, err, "Password reset failed")
		if errors.Is(err, domain.ErrInvalidResetToken) || errors.Is(err, domain.ErrNotFound) {
			return redirect(c, "/forgot-password")
		}
		return redirect(c, "/reset-password?"+url.Values{"token": {form.Token}}.Encode())
	}

	view.SetFlashSuccess(c, i18n.T(i18n.MsgResetSuccess))
	return redirect(c, "/login")
}

func signedIn(c echo.Context) bool {
	a, _ := session.GetAuth(c)
	return a != nil && a.SignedIn()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
