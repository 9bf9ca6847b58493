package pages

import (
	"net/http"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/i18n"
)

// Error is the page shown for 404s and failures.
func Error(status int, message string) g.Node {
	title := "عذراً"
	if status == http.StatusNotFound {
		title = "الصفحة غير موجودة"
	}
	return h.Section(
		h.Class("error-page"),
		h.P(h.Class("error-code"), g.Text(i18n.Number(status))),
		h.H1(g.Text(title)),
		h.P(g.Text(message)),
		h.A(h.Class("btn btn-primary"), h.Href("/"), g.Text("العودة للرئيسية")),
	)
}
