package pages

import (
	"net/url"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/listing"
	"github.com/nfrund/zina/web/src/templates/components"
)

// SearchData feeds the results page.
type SearchData struct {
	Query        string
	Searched     string
	Rewritten    bool
	Alternatives []string
	TooShort     bool
	Results      listing.Page[domain.Product]
	Favorites    map[string]bool
}

// Search shows locally paginated results for a query.
func Search(data SearchData) g.Node {
	params := url.Values{"q": {data.Query}}
	return g.Group([]g.Node{
		h.Div(
			h.Class("page-head"),
			h.H1(g.Textf("نتائج البحث عن «%s»", data.Query)),
			g.If(data.Rewritten, h.P(h.Class("muted"), g.Textf("عرض نتائج «%s»", data.Searched))),
			g.If(data.Results.TotalItems > 0, h.P(h.Class("muted"), g.Textf("%s نتيجة", i18n.Number(data.Results.TotalItems)))),
		),
		g.If(data.TooShort, components.EmptyState(i18n.T(i18n.MsgSearchMinLength), "", "", "")),
		g.If(!data.TooShort && data.Results.TotalItems == 0, h.Div(
			components.EmptyState(i18n.T(i18n.MsgNoResults), "تأكدي من كتابة الكلمة بشكل صحيح أو جربي كلمة أخرى.", "", ""),
			g.If(len(data.Alternatives) > 0, h.P(
				h.Class("alternatives"),
				g.Text("هل تقصدين: "),
				g.Map(data.Alternatives, func(a string) g.Node {
					return h.A(h.Href("/search?q="+url.QueryEscape(a)), g.Text(a))
				}),
			)),
		)),
		g.If(data.Results.TotalItems > 0, components.ProductGrid(data.Results.Items, data.Favorites)),
		components.Pagination("/search", params, data.Results.Page, data.Results.TotalPages),
	})
}
