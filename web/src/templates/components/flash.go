package components

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/view"
)

// FlashList renders the pending success and error messages.
func FlashList(f view.FlashData) g.Node {
	if f.Empty() {
		return nil
	}
	return h.Div(
		h.Class("flashes"),
		h.Role("status"),
		g.Map(f.Success, func(m string) g.Node {
			return h.P(h.Class("flash flash-success"), g.Text(m))
		}),
		g.Map(f.Error, func(m string) g.Node {
			return h.P(h.Class("flash flash-error"), h.Role("alert"), g.Text(m))
		}),
	)
}

// EmptyState is shown in place of an empty list.
func EmptyState(title, body, linkText, linkHref string) g.Node {
	return h.Div(
		h.Class("empty-state"),
		h.H2(g.Text(title)),
		g.If(body != "", h.P(g.Text(body))),
		g.If(linkHref != "", h.A(h.Class("btn btn-primary"), h.Href(linkHref), g.Text(linkText))),
	)
}
