package components

import (
	"fmt"
	"time"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/i18n"
)

// Element IDs targeted by live updates.
const (
	BadgeID       = "notif-badge"
	LiveNoticesID = "live-notices"
)

// NotificationsLink is the header bell. The unread count is loaded lazily so
// page renders never wait on the notifications API.
func NotificationsLink() g.Node {
	return h.A(
		h.Class("icon-link"),
		h.Href("/account/notifications"),
		h.Aria("label", "الإشعارات"),
		Icon("bell", ""),
		h.Span(
			h.ID(BadgeID),
			hx.Get("/account/notifications/badge"),
			hx.Trigger("load"),
			hx.Swap("outerHTML"),
		),
	)
}

// Badge is the unread counter. oob marks it for an out-of-band swap when it
// travels with another fragment or over the websocket.
func Badge(unread int, oob bool) g.Node {
	return h.Span(
		h.ID(BadgeID),
		g.If(unread > 0, h.Class("count-badge")),
		g.If(oob, hx.SwapOOB("true")),
		g.If(unread > 0, g.Text(badgeText(unread))),
	)
}

func badgeText(n int) string {
	if n > 99 {
		return i18n.Digits("99+")
	}
	return i18n.Number(n)
}

// LiveNotice is pushed over the websocket and prepended to the notice stack.
func LiveNotice(text, link string, at time.Time) g.Node {
	return h.Div(
		h.ID(LiveNoticesID),
		hx.SwapOOB("afterbegin"),
		h.Div(
			h.Class("toast"),
			h.Role("status"),
			g.Attr("data-at", fmt.Sprint(at.Unix())),
			g.If(link != "", h.A(h.Href(link), g.Text(text))),
			g.If(link == "", g.Text(text)),
		),
	)
}

// CountBadge is a small counter next to a header icon.
func CountBadge(n int) g.Node {
	if n <= 0 {
		return nil
	}
	return h.Span(h.Class("count-badge"), g.Text(badgeText(n)))
}
