package components

import (
	"fmt"
	"net/url"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	c "maragu.dev/gomponents/components"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/i18n"
)

// ProductURL is the detail page of a product.
func ProductURL(id string) string {
	return "/products/" + url.PathEscape(id)
}

// Price shows the effective price and, for discounted products, the struck
// list price.
func Price(p domain.Product) g.Node {
	if !p.OnSale() {
		return h.Span(h.Class("price"), g.Text(i18n.Price(p.Price, p.Currency)))
	}
	return h.Span(
		h.Class("price price-sale"),
		h.Span(h.Class("price-now"), g.Text(i18n.Price(p.EffectivePrice(), p.Currency))),
		g.El("del", h.Class("price-was"), g.Text(i18n.Price(p.Price, p.Currency))),
		h.Span(h.Class("price-off"), g.Text(i18n.Digits(fmt.Sprintf("-%d%%", p.DiscountPercent())))),
	)
}

// FavoriteButton is the heart toggle. With htmx it swaps itself in place;
// without JavaScript the form posts and redirects back.
func FavoriteButton(id string, favorite bool) g.Node {
	label := "أضيفي إلى المفضلة"
	if favorite {
		label = "أزيلي من المفضلة"
	}
	action := "/favorites/" + url.PathEscape(id) + "/toggle"
	return h.Form(
		h.Class("fav-form"),
		h.Method("post"),
		h.Action(action),
		hx.Post(action),
		hx.Target("this"),
		hx.Swap("outerHTML"),
		h.Button(
			h.Type("submit"),
			c.Classes{"fav-btn": true, "is-active": favorite},
			h.Aria("pressed", fmt.Sprint(favorite)),
			h.Aria("label", label),
			h.Title(label),
			Icon("heart", ""),
		),
	)
}

// ProductCard is the listing tile of a product.
func ProductCard(p domain.Product, favorite bool) g.Node {
	return h.Article(
		h.Class("card"),
		h.ID("product-"+p.ID),
		h.A(
			h.Href(ProductURL(p.ID)),
			h.Class("card-media"),
			g.If(p.ImageURL != "", h.Img(h.Src(p.ImageURL), h.Alt(p.Name), g.Attr("loading", "lazy"))),
			g.If(p.Badge != "", h.Span(h.Class("badge"), g.Text(p.Badge))),
		),
		h.Div(
			h.Class("card-body"),
			g.If(p.Brand != "", h.P(h.Class("card-brand"), g.Text(p.Brand))),
			h.H3(h.Class("card-title"), h.A(h.Href(ProductURL(p.ID)), g.Text(p.Name))),
			g.If(p.Rating > 0, Rating(p.Rating, p.ReviewsCount)),
			h.Div(h.Class("card-foot"), Price(p), FavoriteButton(p.ID, favorite)),
		),
	)
}

// Rating shows the average rating and review count.
func Rating(avg float64, count int) g.Node {
	return h.P(
		h.Class("rating"),
		Icon("star", "icon-sm"),
		g.Text(i18n.Digits(fmt.Sprintf("%.1f", avg))),
		g.If(count > 0, h.Span(h.Class("muted"), g.Textf(" (%s)", i18n.Number(count)))),
	)
}

// ProductGrid lays out cards, marking those in favorites.
func ProductGrid(products []domain.Product, favorites map[string]bool) g.Node {
	return h.Div(
		h.Class("grid"),
		g.Map(products, func(p domain.Product) g.Node {
			return ProductCard(p, favorites[p.ID])
		}),
	)
}
