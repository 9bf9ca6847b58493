package pages

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// field renders a labelled input. Extra nodes are attributes of the input.
func field(id, label, typ, name, value string, extra ...g.Node) g.Node {
	return h.Div(
		h.Class("field"),
		h.Label(h.For(id), g.Text(label)),
		h.Input(append([]g.Node{h.ID(id), h.Type(typ), h.Name(name), g.If(value != "", h.Value(value))}, extra...)...),
	)
}

func submit(label string) g.Node {
	return h.Button(h.Type("submit"), h.Class("btn btn-primary btn-block"), g.Text(label))
}

func panel(title string, children ...g.Node) g.Node {
	return h.Section(
		h.Class("panel"),
		h.H1(g.Text(title)),
		g.Group(children),
	)
}
