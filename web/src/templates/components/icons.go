package components

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

var iconPaths = map[string]string{
	"heart":   "M12 21s-7.5-4.6-9.6-9.1C.9 8.6 3 5 6.6 5c2 0 3.5 1.1 4.4 2.6h2C13.9 6.1 15.4 5 17.4 5 21 5 23.1 8.6 21.6 11.9 19.5 16.4 12 21 12 21z",
	"search":  "M10.5 3a7.5 7.5 0 015.9 12.1l4.8 4.8-1.4 1.4-4.8-4.8A7.5 7.5 0 1110.5 3zm0 2a5.5 5.5 0 100 11 5.5 5.5 0 000-11z",
	"bell":    "M12 22a2.5 2.5 0 002.4-2h-4.8a2.5 2.5 0 002.4 2zm7-6V11a7 7 0 00-5-6.7V3.5a2 2 0 10-4 0v.8A7 7 0 005 11v5l-2 2v1h18v-1z",
	"user":    "M12 12a5 5 0 100-10 5 5 0 000 10zm0 2c-4.4 0-9 2.2-9 5v3h18v-3c0-2.8-4.6-5-9-5z",
	"home":    "M12 3l9 8h-3v9h-5v-6h-2v6H6v-9H3z",
	"grid":    "M3 3h8v8H3zm10 0h8v8h-8zM3 13h8v8H3zm10 0h8v8h-8z",
	"star":    "M12 2l3 6.9 7.5.7-5.7 5 1.7 7.4L12 18.3 5.5 22l1.7-7.4-5.7-5 7.5-.7z",
	"chevron": "M15.4 7.4L14 6l-6 6 6 6 1.4-1.4L10.8 12z",
	"close":   "M18.3 5.7L12 12l6.3 6.3-1.4 1.4L10.6 13.4 4.3 19.7 2.9 18.3 9.2 12 2.9 5.7 4.3 4.3l6.3 6.3 6.3-6.3z",
}

// Icon renders an inline SVG icon. Unknown names render nothing.
func Icon(name string, class string) g.Node {
	d, ok := iconPaths[name]
	if !ok {
		return nil
	}
	return h.SVG(
		g.Attr("viewBox", "0 0 24 24"),
		g.Attr("fill", "currentColor"),
		g.Attr("aria-hidden", "true"),
		h.Class("icon "+class),
		g.El("path", g.Attr("d", d)),
	)
}
