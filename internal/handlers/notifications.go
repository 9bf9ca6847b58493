package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	g "maragu.dev/gomponents"

	"github.com/nfrund/zina/internal/apiclient"
	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/middleware"
	"github.com/nfrund/zina/internal/session"
	"github.com/nfrund/zina/internal/view"
	"github.com/nfrund/zina/web/src/templates/components"
	"github.com/nfrund/zina/web/src/templates/layouts"
	"github.com/nfrund/zina/web/src/templates/pages"
)

// NotificationsAPI is the part of the upstream API behind the notifications
// screen.
type NotificationsAPI interface {
	ListNotifications(ctx context.Context, ts apiclient.TokenStore) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, ts apiclient.TokenStore, id string) error
	MarkAllNotificationsRead(ctx context.Context, ts apiclient.TokenStore) error
}

// NotificationsHandler serves /account/notifications. Every route sits
// behind middleware.RequireAuth.
type NotificationsHandler struct {
	api NotificationsAPI
}

func NewNotificationsHandler(api NotificationsAPI) *NotificationsHandler {
	return &NotificationsHandler{api: api}
}

// List renders GET /account/notifications.
func (h *NotificationsHandler) List(c echo.Context) error {
	a, err := session.GetAuth(c)
	if a == nil {
		return err
	}
	items, err := h.api.ListNotifications(c.Request().Context(), a)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return sessionExpired(c)
	case err != nil:
		return upstreamError(err)
	}
	return page(c, http.StatusOK, layouts.PageMeta{Title: "الإشعارات", Active: "account"}, pages.Notifications(items))
}

// Badge renders the unread counter (GET /account/notifications/badge). It is
// loaded lazily by the header, so failures render an empty badge.
func (h *NotificationsHandler) Badge(c echo.Context) error {
	_, unread := h.unread(c)
	return fragment(c, http.StatusOK, components.Badge(unread, false))
}

// MarkRead handles POST /account/notifications/:id/read. htmx gets the row
// in its read state plus the new badge out of band.
func (h *NotificationsHandler) MarkRead(c echo.Context) error {
	a, err := session.GetAuth(c)
	if a == nil {
		return err
	}
	id := c.Param("id")
	err = h.api.MarkNotificationRead(c.Request().Context(), a, id)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return sessionExpired(c)
	case errors.Is(err, domain.ErrNotFound):
		return notFound(err)
	case err != nil:
		if isHTMX(c) {
			return upstreamError(err)
		}
		flashError(c, err, "Marking notification read failed")
		return redirect(c, "/account/notifications")
	}

	if !isHTMX(c) {
		return redirect(c, "/account/notifications")
	}
	items, unread := h.unread(c)
	row := domain.Notification{ID: id, Read: true}
	for _, n := range items {
		if n.ID == id {
			row = n
			row.Read = true
		}
	}
	return fragment(c, http.StatusOK, g.Group([]g.Node{
		pages.NotificationItem(row),
		components.Badge(unread, true),
	}))
}

// MarkAllRead handles POST /account/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c echo.Context) error {
	a, err := session.GetAuth(c)
	if a == nil {
		return err
	}
	err = h.api.MarkAllNotificationsRead(c.Request().Context(), a)
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return sessionExpired(c)
	case err != nil:
		flashError(c, err, "Marking all notifications read failed")
	default:
		view.SetFlashSuccess(c, i18n.T(i18n.MsgNotificationsRead))
	}
	return redirect(c, "/account/notifications")
}

// unread lists the notifications and counts the unread ones. Errors are
// logged and count as nothing unread.
func (h *NotificationsHandler) unread(c echo.Context) ([]domain.Notification, int) {
	a, _ := session.GetAuth(c)
	if a == nil || !a.SignedIn() {
		return nil, 0
	}
	items, err := h.api.ListNotifications(c.Request().Context(), a)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Warn("Listing notifications failed", "error", err)
		return nil, 0
	}
	for i := range items {
		if items[i].ID == c.Param("id") {
			items[i].Read = true
		}
	}
	return items, domain.UnreadCount(items)
}
