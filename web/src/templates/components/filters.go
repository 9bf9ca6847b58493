package components

import (
	"strconv"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/listing"
)

// FilterForm is the GET form narrowing a listing page.
func FilterForm(action string, f listing.Filter, brands []string) g.Node {
	return h.Form(
		h.Class("filters"),
		h.Method("get"),
		h.Action(action),
		h.Label(h.For("f-q"), g.Text("بحث ضمن القسم")),
		h.Input(h.ID("f-q"), h.Type("search"), h.Name("q"), h.Value(f.Query)),

		g.If(len(brands) > 0, g.Group([]g.Node{
			h.Label(h.For("f-brand"), g.Text("الماركة")),
			h.Select(
				h.ID("f-brand"),
				h.Name("brand"),
				h.Option(h.Value(""), g.Text("كل الماركات")),
				g.Map(brands, func(b string) g.Node {
					return h.Option(h.Value(b), g.If(b == f.Brand, h.Selected()), g.Text(b))
				}),
			),
		})),

		h.Label(h.For("f-min"), g.Text("السعر من")),
		h.Input(h.ID("f-min"), h.Type("number"), h.Name("min_price"), g.Attr("min", "0"), g.Attr("step", "any"), h.Value(priceValue(f.MinPrice))),
		h.Label(h.For("f-max"), g.Text("إلى")),
		h.Input(h.ID("f-max"), h.Type("number"), h.Name("max_price"), g.Attr("min", "0"), g.Attr("step", "any"), h.Value(priceValue(f.MaxPrice))),

		h.Label(
			h.Class("check"),
			h.Input(h.Type("checkbox"), h.Name("in_stock"), h.Value("1"), g.If(f.InStockOnly, h.Checked())),
			g.Text("المتوفر فقط"),
		),

		h.Label(h.For("f-sort"), g.Text("الترتيب")),
		h.Select(
			h.ID("f-sort"),
			h.Name("sort"),
			g.Map(listing.SortOptions, func(o listing.SortOption) g.Node {
				selected := o.Value == f.Sort || (f.Sort == "" && o.Value == listing.SortRelevance)
				return h.Option(h.Value(o.Value), g.If(selected, h.Selected()), g.Text(o.Label))
			}),
		),

		h.Button(h.Type("submit"), h.Class("btn btn-primary"), g.Text("تطبيق")),
		g.If(!f.IsZero(), h.A(h.Class("btn btn-link"), h.Href(action), g.Text("مسح الفلاتر"))),
	)
}

func priceValue(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
