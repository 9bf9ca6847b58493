package pages

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/web/src/templates/components"
)

// BlogIndex lists one page of posts.
func BlogIndex(page domain.PostPage) g.Node {
	if len(page.Items) == 0 {
		return components.EmptyState("لا توجد مقالات بعد", "", "العودة للرئيسية", "/")
	}
	return g.Group([]g.Node{
		h.Div(h.Class("page-head"), h.H1(g.Text("المدونة")), h.P(h.Class("muted"), g.Text("نصائح الجمال والعناية من فريق زينة."))),
		h.Div(h.Class("post-list"), g.Map(page.Items, postCard)),
		components.Pagination("/blog", nil, page.Page, page.TotalPages),
	})
}

// Post renders a single article. The body is trusted HTML from the content
// API and is written as is.
func Post(p domain.Post) g.Node {
	return h.Article(
		h.Class("post"),
		h.Header(
			h.H1(g.Text(p.Title)),
			h.P(
				h.Class("muted"),
				g.If(p.Author != "", g.Text(p.Author+" · ")),
				g.Text(i18n.Date(p.PublishedAt)),
			),
		),
		g.If(p.CoverURL != "", h.Img(h.Class("post-cover"), h.Src(p.CoverURL), h.Alt(p.Title))),
		h.Div(h.Class("post-body"), g.Raw(p.BodyHTML)),
		g.If(len(p.Tags) > 0, h.Ul(h.Class("tags"), g.Map(p.Tags, func(t string) g.Node {
			return h.Li(g.Text(t))
		}))),
		h.P(h.A(h.Href("/blog"), g.Text("← كل المقالات"))),
	)
}
