package pages

import (
	"net/url"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/blog"
	"github.com/nfrund/zina/internal/catalog"
	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/listing"
	"github.com/nfrund/zina/web/src/templates/components"
)

// HomeData feeds the landing page.
type HomeData struct {
	Sections  []catalog.Section
	Posts     []domain.Post
	Favorites map[string]bool
}

// Home is the landing page: a hero, one strip per category and the latest
// journal posts.
func Home(data HomeData) g.Node {
	return g.Group([]g.Node{
		h.Section(
			h.Class("hero"),
			h.H1(g.Text("جمالك يبدأ من هنا")),
			h.P(g.Text("منتجات العناية بالبشرة والشعر والمكياج المختارة بعناية.")),
			h.A(h.Class("btn btn-primary"), h.Href("/category/skincare"), g.Text("تسوقي الآن")),
		),
		g.Map(data.Sections, func(s catalog.Section) g.Node {
			return h.Section(
				h.Class("strip"),
				h.Div(
					h.Class("strip-head"),
					h.H2(g.Text(s.Category.Name)),
					h.A(h.Href("/category/"+s.Category.Slug), g.Text("عرض الكل")),
				),
				g.If(len(s.Products) == 0, h.P(h.Class("muted"), g.Text(i18n.T(i18n.MsgUpstreamDown)))),
				g.If(len(s.Products) > 0, components.ProductGrid(s.Products, data.Favorites)),
			)
		}),
		g.If(len(data.Posts) > 0, h.Section(
			h.Class("strip"),
			h.Div(h.Class("strip-head"), h.H2(g.Text("من المدونة")), h.A(h.Href("/blog"), g.Text("كل المقالات"))),
			h.Div(h.Class("post-list"), g.Map(data.Posts, postCard)),
		)),
	})
}

// CategoryData feeds a category listing.
type CategoryData struct {
	Category   domain.Category
	Products   []domain.Product
	Brands     []string
	Filter     listing.Filter
	Page       int
	TotalPages int
	TotalItems int
	Favorites  map[string]bool
}

// Category lists one upstream page of a category, narrowed by the filter.
func Category(data CategoryData) g.Node {
	base := "/category/" + data.Category.Slug
	return g.Group([]g.Node{
		h.Div(
			h.Class("page-head"),
			h.H1(g.Text(data.Category.Name)),
			h.P(h.Class("muted"), g.Text(data.Category.Description)),
			g.If(data.TotalItems > 0, h.P(h.Class("muted"), g.Textf("%s منتج", i18n.Number(data.TotalItems)))),
		),
		h.Div(
			h.Class("listing"),
			h.Aside(components.FilterForm(base, data.Filter, data.Brands)),
			h.Div(
				g.If(len(data.Products) == 0, components.EmptyState("لا توجد منتجات", "جربي تغيير الفلاتر أو الانتقال إلى صفحة أخرى.", "", "")),
				g.If(len(data.Products) > 0, components.ProductGrid(data.Products, data.Favorites)),
				components.Pagination(base, data.Filter.Values(), data.Page, data.TotalPages),
			),
		),
	})
}

// ComingSoon stands in for categories without products yet.
func ComingSoon(cat domain.Category) g.Node {
	return components.EmptyState(cat.Name, cat.Description+" "+i18n.T(i18n.MsgComingSoon), "تصفحي العناية بالبشرة", "/category/skincare")
}

// ProductData feeds the product detail page.
type ProductData struct {
	Product  domain.Product
	Category domain.Category
	Favorite bool
}

// Product is the detail page of a single product.
func Product(data ProductData) g.Node {
	p := data.Product
	return h.Article(
		h.Class("product-detail"),
		h.Nav(
			h.Class("breadcrumbs"),
			h.A(h.Href("/"), g.Text("الرئيسية")),
			g.If(data.Category.Slug != "", h.A(h.Href("/category/"+data.Category.Slug), g.Text(data.Category.Name))),
		),
		h.Div(
			h.Class("product-media"),
			g.If(p.ImageURL != "", h.Img(h.Src(p.ImageURL), h.Alt(p.Name))),
			g.If(p.Badge != "", h.Span(h.Class("badge"), g.Text(p.Badge))),
		),
		h.Div(
			h.Class("product-info"),
			g.If(p.Brand != "", h.P(h.Class("card-brand"), h.A(h.Href("/search?q="+url.QueryEscape(p.Brand)), g.Text(p.Brand)))),
			h.H1(g.Text(p.Name)),
			g.If(p.Rating > 0, components.Rating(p.Rating, p.ReviewsCount)),
			components.Price(p),
			h.P(
				h.Class("stock"),
				g.If(p.InStock, g.Text("متوفر")),
				g.If(!p.InStock, h.Span(h.Class("out-of-stock"), g.Text("غير متوفر حالياً"))),
			),
			components.FavoriteButton(p.ID, data.Favorite),
			g.If(p.Description != "", h.Div(h.Class("description"), h.P(g.Text(p.Description)))),
			g.If(len(p.Tags) > 0, h.Ul(h.Class("tags"), g.Map(p.Tags, func(t string) g.Node {
				return h.Li(h.A(h.Href("/search?q="+url.QueryEscape(t)), g.Text(t)))
			}))),
		),
	)
}

func postCard(p domain.Post) g.Node {
	return h.Article(
		h.Class("post-card"),
		g.If(p.CoverURL != "", h.Img(h.Src(p.CoverURL), h.Alt(p.Title), g.Attr("loading", "lazy"))),
		h.H3(h.A(h.Href("/blog/"+url.PathEscape(p.Slug)), g.Text(p.Title))),
		h.P(h.Class("muted"), g.Text(i18n.Date(p.PublishedAt))),
		h.P(g.Text(blog.Excerpt(p.BodyHTML))),
	)
}
