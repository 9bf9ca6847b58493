package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/apiclient"
	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/events"
	"github.com/nfrund/zina/internal/favorites"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/middleware"
	"github.com/nfrund/zina/internal/pubsub"
	"github.com/nfrund/zina/internal/session"
	"github.com/nfrund/zina/internal/view"
	"github.com/nfrund/zina/web/src/templates/layouts"
	"github.com/nfrund/zina/web/src/templates/pages"
)

// AccountAPI is the part of the upstream API behind the account screens.
type AccountAPI interface {
	Me(ctx context.Context, ts apiclient.TokenStore) (domain.User, error)
	UpdateProfile(ctx context.Context, ts apiclient.TokenStore, upd domain.ProfileUpdate) (domain.User, error)
	ChangePassword(ctx context.Context, ts apiclient.TokenStore, current, next string) error
}

// AccountHandler serves the account overview and the profile forms. Every
// route sits behind middleware.RequireAuth.
type AccountHandler struct {
	api AccountAPI
	bus pubsub.Publisher
	now func() time.Time
}

// NewAccountHandler creates an AccountHandler. bus may be nil.
func NewAccountHandler(api AccountAPI, bus pubsub.Publisher) *AccountHandler {
	return &AccountHandler{api: api, bus: bus, now: time.Now}
}

// Overview renders GET /account.
func (h *AccountHandler) Overview(c echo.Context) error {
	u, err := h.freshUser(c)
	if errors.Is(err, domain.ErrUnauthorized) {
		return sessionExpired(c)
	}
	if err != nil {
		return err
	}
	count := 0
	if favs, _ := favorites.Open(c); favs != nil {
		count = favs.Count()
	}
	return page(c, http.StatusOK, layouts.PageMeta{Title: "حسابي", Active: "account"}, pages.Account(u, count))
}

// ProfileGet renders GET /account/profile.
func (h *AccountHandler) ProfileGet(c echo.Context) error {
	u, err := h.freshUser(c)
	if errors.Is(err, domain.ErrUnauthorized) {
		return sessionExpired(c)
	}
	if err != nil {
		return err
	}
	return page(c, http.StatusOK, layouts.PageMeta{Title: "الملف الشخصي", Active: "account"}, pages.Profile(u))
}

// ProfilePost saves the profile form and refreshes the session snapshot.
func (h *AccountHandler) ProfilePost(c echo.Context) error {
	var upd domain.ProfileUpdate
	if err := bindForm(c, &upd, &upd.Name, &upd.Phone, &upd.AvatarURL); err != nil {
		flashError(c, err, "Invalid profile form")
		return redirect(c, "/account/profile")
	}

	a, err := session.GetAuth(c)
	if a == nil {
		return err
	}
	ctx := c.Request().Context()
	u, err := h.api.UpdateProfile(ctx, a, upd)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return sessionExpired(c)
	case err != nil:
		flashError(c, err, "Profile update failed")
		return redirect(c, "/account/profile")
	}
	if err := a.SetUser(u); err != nil {
		return err
	}

	if h.bus != nil {
		payload := events.ProfileUpdatedPayload{Name: u.Name, At: h.now()}
		if err := pubsub.Publish(ctx, h.bus, events.ProfileUpdated, u.ID, payload); err != nil {
			middleware.FromContext(ctx).Warn("Failed to publish profile update", "error", err)
		}
	}
	view.SetFlashSuccess(c, i18n.T(i18n.MsgProfileSaved))
	return redirect(c, "/account/profile")
}

// PasswordPost changes the password of the signed-in customer.
func (h *AccountHandler) PasswordPost(c echo.Context) error {
	var form domain.PasswordChange
	if err := bindForm(c, &form); err != nil {
		flashError(c, err, "Invalid password form")
		return redirect(c, "/account/profile")
	}

	a, err := session.GetAuth(c)
	if a == nil {
		return err
	}
	err = h.api.ChangePassword(c.Request().Context(), a, form.Current, form.New)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return sessionExpired(c)
	case errors.Is(err, domain.ErrInvalidCredentials):
		view.SetFlashError(c, i18n.T(i18n.MsgWrongPassword))
		return redirect(c, "/account/profile")
	case err != nil:
		flashError(c, err, "Password change failed")
		return redirect(c, "/account/profile")
	}
	view.SetFlashSuccess(c, i18n.T(i18n.MsgPasswordChanged))
	return redirect(c, "/account/profile")
}

// freshUser reloads the profile from the API and stores it in the session.
// When the API is down the snapshot from sign-in is good enough.
// domain.ErrUnauthorized means the tokens are gone.
func (h *AccountHandler) freshUser(c echo.Context) (domain.User, error) {
	snapshot, _ := middleware.CurrentUser(c)
	a, err := session.GetAuth(c)
	if a == nil {
		return snapshot, err
	}
	u, err := h.api.Me(c.Request().Context(), a)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return snapshot, err
	case err != nil:
		middleware.FromContext(c.Request().Context()).Warn("Profile refresh failed, using session snapshot", "error", err)
		return snapshot, nil
	}
	if u != snapshot {
		if err := a.SetUser(u); err != nil {
			return u, err
		}
	}
	return u, nil
}
