package layouts

import (
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	c "maragu.dev/gomponents/components"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/view"
	"github.com/nfrund/zina/web/src/templates/components"
)

// PageMeta carries what the layout needs besides the page content.
type PageMeta struct {
	Title       string
	Description string
	// Active is the category slug or section highlighted in navigation.
	Active         string
	Query          string
	SignedIn       bool
	UserName       string
	FavoritesCount int
}

// Base renders the RTL page shell around content.
func Base(meta PageMeta, flashes view.FlashData, content g.Node) g.Node {
	return h.Doctype(
		h.HTML(
			h.Lang("ar"),
			g.Attr("dir", "rtl"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
				h.TitleEl(g.Text(CalculateTitle(meta.Title))),
				g.If(meta.Description != "", h.Meta(h.Name("description"), h.Content(meta.Description))),
				h.Link(h.Rel("stylesheet"), h.Href("/static/css/zina.css")),
				h.Script(h.Src("https://unpkg.com/htmx.org@2.0.4"), h.Defer()),
				g.If(meta.SignedIn, h.Script(h.Src("https://unpkg.com/htmx-ext-ws@2.0.1/ws.js"), h.Defer())),
			),
			h.Body(
				hx.Boost("true"),
				g.If(meta.SignedIn, g.Group([]g.Node{hx.Ext("ws"), g.Attr("ws-connect", "/ws/notifications")})),
				header(meta),
				h.Main(
					h.ID("content"),
					h.Class("container"),
					components.FlashList(flashes),
					content,
				),
				h.Div(h.ID(components.LiveNoticesID), h.Class("toasts"), h.Aria("live", "polite")),
				footer(),
				bottomNav(meta),
			),
		),
	)
}

func header(meta PageMeta) g.Node {
	return h.Header(
		h.Class("site-header"),
		h.Div(
			h.Class("container header-row"),
			h.A(h.Class("logo"), h.Href("/"), g.Text(SiteName)),
			components.SearchBox(meta.Query),
			h.Nav(
				h.Class("header-icons"),
				h.A(
					h.Class("icon-link"),
					h.Href("/favorites"),
					h.Aria("label", "المفضلة"),
					components.Icon("heart", ""),
					components.CountBadge(meta.FavoritesCount),
				),
				g.If(meta.SignedIn, components.NotificationsLink()),
				accountLink(meta),
			),
		),
		categoryNav(meta.Active),
	)
}

func accountLink(meta PageMeta) g.Node {
	if !meta.SignedIn {
		return h.A(h.Class("btn btn-outline"), h.Href("/login"), g.Text("تسجيل الدخول"))
	}
	return h.A(
		h.Class("icon-link"),
		h.Href("/account"),
		h.Aria("label", "حسابي"),
		components.Icon("user", ""),
		h.Span(h.Class("user-name"), g.Text(meta.UserName)),
	)
}

func categoryNav(active string) g.Node {
	return h.Nav(
		h.Class("category-nav"),
		h.Aria("label", "الأقسام"),
		h.Ul(
			h.Class("container"),
			g.Map(domain.Categories, func(cat domain.Category) g.Node {
				return h.Li(h.A(
					c.Classes{"is-active": cat.Slug == active, "is-soon": cat.Placeholder},
					h.Href("/category/"+cat.Slug),
					g.Text(cat.Name),
				))
			}),
			h.Li(h.A(c.Classes{"is-active": active == "blog"}, h.Href("/blog"), g.Text("المدونة"))),
		),
	)
}

func footer() g.Node {
	return h.Footer(
		h.Class("site-footer"),
		h.Div(
			h.Class("container"),
			h.P(g.Textf("© %s. جميع الحقوق محفوظة.", SiteName)),
			h.Nav(
				h.A(h.Href("/blog"), g.Text("المدونة")),
				h.A(h.Href("/account"), g.Text("حسابي")),
			),
		),
	)
}

// bottomNav is the mobile tab bar.
func bottomNav(meta PageMeta) g.Node {
	item := func(href, icon, label string, active bool) g.Node {
		return h.A(c.Classes{"tab": true, "is-active": active}, h.Href(href), components.Icon(icon, ""), h.Span(g.Text(label)))
	}
	return h.Nav(
		h.Class("bottom-nav"),
		h.Aria("label", "التنقل"),
		item("/", "home", "الرئيسية", meta.Active == "home"),
		item("/category/skincare", "grid", "الأقسام", false),
		item("/favorites", "heart", "المفضلة", meta.Active == "favorites"),
		item("/account", "user", "حسابي", meta.Active == "account"),
	)
}
