package components

import (
	"net/url"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/search"
)

// SuggestionsID is the dropdown element the search box targets.
const SuggestionsID = "search-suggestions"

// SearchBox is the header search form with live suggestions.
func SearchBox(query string) g.Node {
	return h.Form(
		h.Class("search-box"),
		h.Role("search"),
		h.Method("get"),
		h.Action("/search"),
		h.Label(h.For("q"), h.Class("sr-only"), g.Text("ابحثي عن منتج")),
		h.Input(
			h.ID("q"),
			h.Type("search"),
			h.Name("q"),
			h.Value(query),
			h.Placeholder("ابحثي عن منتج أو ماركة…"),
			h.AutoComplete("off"),
			hx.Get("/search/suggest"),
			hx.Trigger("keyup changed delay:250ms, search"),
			hx.Target("#"+SuggestionsID),
			hx.Swap("innerHTML"),
		),
		h.Button(h.Type("submit"), h.Aria("label", "بحث"), Icon("search", "")),
		h.Div(h.ID(SuggestionsID), h.Class("suggestions"), h.Role("listbox")),
	)
}

// Suggestions is the dropdown content for a query. Queries that are too short
// render an empty fragment so the dropdown closes.
func Suggestions(query string, items []search.Suggestion) g.Node {
	if len(items) == 0 {
		if query == "" {
			return g.Group(nil)
		}
		return h.P(h.Class("suggestions-empty"), g.Text(i18n.T(i18n.MsgNoResults)))
	}
	return h.Ul(
		g.Map(items, func(s search.Suggestion) g.Node {
			return h.Li(
				h.Role("option"),
				h.A(
					h.Href(ProductURL(s.ProductID)),
					h.Span(h.Class("suggestion-label"), g.Text(s.Label)),
					g.If(s.Brand != "", h.Span(h.Class("suggestion-brand muted"), g.Text(s.Brand))),
				),
			)
		}),
		h.Li(h.Class("suggestions-all"), h.A(h.Href("/search?q="+url.QueryEscape(query)), g.Text("عرض كل النتائج"))),
	)
}
