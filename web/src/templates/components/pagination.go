package components

import (
	"net/url"
	"strconv"

	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/listing"
)

// PageLink builds the URL of page n of base, keeping the other parameters.
func PageLink(base string, params url.Values, n int) string {
	q := url.Values{}
	for k, vs := range params {
		if k == "page" {
			continue
		}
		q[k] = vs
	}
	if n > 1 {
		q.Set("page", strconv.Itoa(n))
	}
	if enc := q.Encode(); enc != "" {
		return base + "?" + enc
	}
	return base
}

// Pagination renders previous/next links around a window of page numbers.
// Nothing is rendered for a single page.
func Pagination(base string, params url.Values, page, totalPages int) g.Node {
	if totalPages <= 1 {
		return nil
	}
	return h.Nav(
		h.Class("pagination"),
		h.Aria("label", "الصفحات"),
		g.If(page > 1, h.A(h.Class("page-link"), h.Rel("prev"), h.Href(PageLink(base, params, page-1)), g.Text("السابق"))),
		g.Map(listing.PageWindow(page, totalPages, listing.DefaultWindow), func(n int) g.Node {
			return h.A(
				c.Classes{"page-link": true, "is-current": n == page},
				h.Href(PageLink(base, params, n)),
				g.If(n == page, h.Aria("current", "page")),
				g.Text(i18n.Number(n)),
			)
		}),
		g.If(page < totalPages, h.A(h.Class("page-link"), h.Rel("next"), h.Href(PageLink(base, params, page+1)), g.Text("التالي"))),
	)
}
