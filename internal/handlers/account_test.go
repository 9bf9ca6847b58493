package handlers_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/handlers"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/middleware"
)

func setupAccount(t *testing.T) (*browser, *fakeAPI, *recordingBus) {
	api := newFakeAPI()
	bus := &recordingBus{}
	b := newBrowser(t, func(e *echo.Echo) {
		registerAuth(e, api, nil)
		ah := handlers.NewAccountHandler(api, bus)
		nh := handlers.NewNotificationsHandler(api)
		e.GET("/account/notifications/badge", nh.Badge)
		g := e.Group("/account", middleware.RequireAuth)
		g.GET("", ah.Overview)
		g.GET("/profile", ah.ProfileGet)
		g.POST("/profile", ah.ProfilePost)
		g.POST("/password", ah.PasswordPost)
		g.GET("/notifications", nh.List)
		g.POST("/notifications/read-all", nh.MarkAllRead)
		g.POST("/notifications/:id/read", nh.MarkRead)
	})
	return b, api, bus
}

func TestAccountRequiresSignIn(t *testing.T) {
	b, _, _ := setupAccount(t)
	r := b.get("/account/profile")
	assert.Equal(t, http.StatusSeeOther, r.Status)
	assert.Equal(t, "/login?next=%2Faccount%2Fprofile", r.Location)
}

func TestAccountOverview(t *testing.T) {
	b, api, _ := setupAccount(t)
	b.signIn()

	api.user.Name = "سارة أحمد"
	r := b.get("/account")
	require.Equal(t, http.StatusOK, r.Status)
	assert.Contains(t, r.Body, "سارة أحمد", "profile is refreshed from the API")

	// The API going down falls back to the sign-in snapshot.
	api.meErr = domain.ErrUpstreamUnavailable
	r = b.get("/account")
	assert.Equal(t, http.StatusOK, r.Status)
	assert.Contains(t, r.Body, "سارة أحمد")
}

func TestExpiredSessionSendsCustomerToLogin(t *testing.T) {
	b, api, _ := setupAccount(t)
	b.signIn()
	api.meErr = domain.ErrUnauthorized

	r := b.get("/account/profile")
	assert.Equal(t, http.StatusSeeOther, r.Status)
	assert.Equal(t, "/login?next=%2Faccount%2Fprofile", r.Location)
	page := b.follow(r)
	assert.Contains(t, page.Body, i18n.T(i18n.MsgSessionExpired))

	// The session is gone, so the account stays locked.
	api.meErr = nil
	assert.Equal(t, http.StatusSeeOther, b.get("/account").Status)
}

func TestProfileUpdate(t *testing.T) {
	t.Run("success refreshes the session and publishes", func(t *testing.T) {
		b, api, bus := setupAccount(t)
		b.signIn()

		r := b.post("/account/profile", url.Values{"name": {" نورة "}, "phone": {"+966500000000"}})
		assert.Equal(t, "/account/profile", r.Location)
		page := b.follow(r)
		assert.Contains(t, page.Body, i18n.T(i18n.MsgProfileSaved))
		assert.Contains(t, page.Body, `value="نورة"`)
		assert.Equal(t, "نورة", api.user.Name)
		assert.Equal(t, []string{"profile.updated"}, bus.topics())
	})

	t.Run("invalid phone", func(t *testing.T) {
		b, _, bus := setupAccount(t)
		b.signIn()
		r := b.post("/account/profile", url.Values{"name": {"نورة"}, "phone": {"0500"}})
		assert.Contains(t, b.follow(r).Body, i18n.T(i18n.MsgInvalidPhone))
		assert.Empty(t, bus.topics())
	})

	t.Run("rejected tokens", func(t *testing.T) {
		b, api, _ := setupAccount(t)
		b.signIn()
		api.updateErr = domain.ErrUnauthorized
		r := b.post("/account/profile", url.Values{"name": {"نورة"}})
		assert.Equal(t, "/login", r.Location, "posts do not come back after login")
	})
}

func TestPasswordChange(t *testing.T) {
	form := url.Values{"current_password": {"old-secret"}, "new_password": {"new-secret"}, "password_confirm": {"new-secret"}}

	t.Run("wrong current password", func(t *testing.T) {
		b, api, _ := setupAccount(t)
		b.signIn()
		api.passwordErr = domain.ErrInvalidCredentials
		r := b.post("/account/password", form)
		assert.Contains(t, b.follow(r).Body, i18n.T(i18n.MsgWrongPassword))
	})

	t.Run("same password", func(t *testing.T) {
		b, _, _ := setupAccount(t)
		b.signIn()
		same := url.Values{"current_password": {"secret-pass"}, "new_password": {"secret-pass"}, "password_confirm": {"secret-pass"}}
		r := b.post("/account/password", same)
		assert.Contains(t, b.follow(r).Body, i18n.T(i18n.MsgSamePassword))
	})

	t.Run("success", func(t *testing.T) {
		b, _, _ := setupAccount(t)
		b.signIn()
		r := b.post("/account/password", form)
		assert.Contains(t, b.follow(r).Body, i18n.T(i18n.MsgPasswordChanged))
	})
}

func TestNotifications(t *testing.T) {
	b, api, _ := setupAccount(t)
	api.notifications = []domain.Notification{
		{ID: "n1", Title: "تم شحن طلبك", CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "n2", Title: "عرض خاص", CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)},
		{ID: "n3", Title: "مرحباً بك", Read: true},
	}

	anonymous := b.get("/account/notifications/badge", htmx...)
	assert.Equal(t, http.StatusOK, anonymous.Status)
	assert.NotContains(t, anonymous.Body, "count-badge")

	b.signIn()

	badge := b.get("/account/notifications/badge", htmx...)
	assert.Contains(t, badge.Body, `id="notif-badge"`)
	assert.Contains(t, badge.Body, i18n.Number(2))

	list := b.get("/account/notifications")
	require.Equal(t, http.StatusOK, list.Status)
	assert.Contains(t, list.Body, "تم شحن طلبك")
	assert.Contains(t, list.Body, "/account/notifications/n1/read")

	r := b.post("/account/notifications/n1/read", nil, htmx...)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Contains(t, r.Body, `id="notification-n1"`)
	assert.NotContains(t, r.Body, "/account/notifications/n1/read", "read rows lose the button")
	assert.Contains(t, r.Body, `hx-swap-oob="true"`)
	assert.Equal(t, []string{"n1"}, api.readIDs)

	assert.Equal(t, http.StatusNotFound, b.post("/account/notifications/missing/read", nil, htmx...).Status)

	r = b.post("/account/notifications/read-all", nil)
	assert.Equal(t, "/account/notifications", r.Location)
	assert.Contains(t, b.follow(r).Body, i18n.T(i18n.MsgNotificationsRead))
	assert.Equal(t, 1, api.readAll)
}
