package pages

import (
	"net/url"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/listing"
	"github.com/nfrund/zina/web/src/templates/components"
)

// Favorites lists the saved products, one local page at a time.
func Favorites(page listing.Page[domain.Product]) g.Node {
	if page.TotalItems == 0 {
		return components.EmptyState("قائمة المفضلة فارغة", "اضغطي على القلب في أي منتج لحفظه هنا.", "تصفحي المنتجات", "/")
	}
	return g.Group([]g.Node{
		h.Div(
			h.Class("page-head"),
			h.H1(g.Text("المفضلة")),
			h.P(h.Class("muted"), g.Textf("%s منتج", i18n.Number(page.TotalItems))),
			h.Form(
				h.Method("post"),
				h.Action("/favorites/clear"),
				hx.Confirm("هل تريدين إفراغ قائمة المفضلة؟"),
				h.Button(h.Type("submit"), h.Class("btn btn-link"), g.Text("إفراغ القائمة")),
			),
		),
		h.Div(
			h.Class("grid"),
			g.Map(page.Items, FavoriteCard),
		),
		components.Pagination("/favorites", nil, page.Page, page.TotalPages),
	})
}

// FavoriteCard is a product card with a remove button that drops the card
// in place.
func FavoriteCard(p domain.Product) g.Node {
	action := "/favorites/" + url.PathEscape(p.ID) + "/remove"
	return h.Div(
		h.Class("fav-card"),
		h.ID("fav-"+p.ID),
		components.ProductCard(p, true),
		h.Form(
			h.Method("post"),
			h.Action(action),
			hx.Post(action),
			hx.Target("#fav-"+p.ID),
			hx.Swap("outerHTML"),
			h.Button(h.Type("submit"), h.Class("btn btn-link"), components.Icon("close", "icon-sm"), g.Text("إزالة")),
		),
	)
}
