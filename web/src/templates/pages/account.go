package pages

import (
	"net/url"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	c "maragu.dev/gomponents/components"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/web/src/templates/components"
)

// Account is the overview of a signed-in customer.
func Account(u domain.User, favorites int) g.Node {
	return g.Group([]g.Node{
		h.Section(
			h.Class("user-card"),
			g.If(u.AvatarURL != "", h.Img(h.Class("avatar"), h.Src(u.AvatarURL), h.Alt(u.DisplayName()))),
			h.Div(
				h.H1(g.Textf("مرحباً، %s", u.DisplayName())),
				h.P(h.Class("muted"), g.Text(u.Email)),
				g.If(!u.CreatedAt.IsZero(), h.P(h.Class("muted"), g.Textf("عضوة منذ %s", i18n.Date(u.CreatedAt)))),
			),
		),
		h.Ul(
			h.Class("account-links"),
			h.Li(h.A(h.Href("/account/profile"), components.Icon("user", ""), g.Text("الملف الشخصي"))),
			h.Li(h.A(h.Href("/favorites"), components.Icon("heart", ""), g.Text("المفضلة"), components.CountBadge(favorites))),
			h.Li(h.A(h.Href("/account/notifications"), components.Icon("bell", ""), g.Text("الإشعارات"))),
		),
		h.Form(
			h.Method("post"),
			h.Action("/logout"),
			h.Button(h.Type("submit"), h.Class("btn btn-outline"), g.Text("تسجيل الخروج")),
		),
	})
}

// Profile holds the profile and password forms.
func Profile(u domain.User) g.Node {
	return g.Group([]g.Node{
		panel("الملف الشخصي",
			h.Form(
				h.Method("post"),
				h.Action("/account/profile"),
				field("name", "الاسم", "text", "name", u.Name, h.Required(), h.AutoComplete("name")),
				h.Div(h.Class("field"), h.Label(g.Text("البريد الإلكتروني")), h.P(h.Class("muted"), g.Text(u.Email))),
				field("phone", "رقم الجوال", "tel", "phone", u.Phone, h.Placeholder("+966500000000"), h.AutoComplete("tel"), g.Attr("dir", "ltr")),
				field("avatar_url", "رابط الصورة الشخصية", "url", "avatar_url", u.AvatarURL, g.Attr("dir", "ltr")),
				submit("حفظ التغييرات"),
			),
		),
		panel("تغيير كلمة المرور",
			h.Form(
				h.Method("post"),
				h.Action("/account/password"),
				field("current_password", "كلمة المرور الحالية", "password", "current_password", "", h.Required(), h.AutoComplete("current-password")),
				field("new_password", "كلمة المرور الجديدة", "password", "new_password", "", h.Required(), g.Attr("minlength", "8"), h.AutoComplete("new-password")),
				field("password_confirm", "تأكيد كلمة المرور", "password", "password_confirm", "", h.Required(), h.AutoComplete("new-password")),
				submit("تغيير كلمة المرور"),
			),
		),
	})
}

// Notifications lists account notifications, unread first as sent by the API.
func Notifications(items []domain.Notification) g.Node {
	unread := domain.UnreadCount(items)
	return g.Group([]g.Node{
		h.Div(
			h.Class("page-head"),
			h.H1(g.Text("الإشعارات")),
			g.If(unread > 0, h.Form(
				h.Method("post"),
				h.Action("/account/notifications/read-all"),
				h.Button(h.Type("submit"), h.Class("btn btn-link"), g.Text("تعليم الكل كمقروء")),
			)),
		),
		g.If(len(items) == 0, components.EmptyState("لا توجد إشعارات", "سنخبرك هنا بكل جديد يخص حسابك.", "", "")),
		h.Ul(h.Class("notifications"), g.Map(items, NotificationItem)),
	})
}

// NotificationItem is one row; marking it read swaps the row in place.
func NotificationItem(n domain.Notification) g.Node {
	action := "/account/notifications/" + url.PathEscape(n.ID) + "/read"
	return h.Li(
		h.ID("notification-"+n.ID),
		c.Classes{"notification": true, "is-unread": !n.Read},
		h.Div(
			h.Strong(g.Text(n.Title)),
			g.If(n.Body != "", h.P(g.Text(n.Body))),
			h.P(h.Class("muted"), g.Text(i18n.Date(n.CreatedAt))),
			g.If(n.Link != "", h.A(h.Href(n.Link), g.Text("عرض"))),
		),
		g.If(!n.Read, h.Form(
			h.Method("post"),
			h.Action(action),
			hx.Post(action),
			hx.Target("#notification-"+n.ID),
			hx.Swap("outerHTML"),
			h.Button(h.Type("submit"), h.Class("btn btn-link"), g.Text("تعليم كمقروء")),
		)),
	)
}
