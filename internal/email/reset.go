package email

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// ResetSubject is the subject line of password reset emails.
const ResetSubject = "إعادة تعيين كلمة المرور في زينة"

// ResetBody renders the Arabic reset email linking to the storefront's
// reset form.
func ResetBody(baseURL, token string) (string, error) {
	link := strings.TrimRight(baseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	doc := h.Div(h.Dir("rtl"), h.Lang("ar"),
		h.P(g.Text("مرحباً،")),
		h.P(g.Text("وصلنا طلب لإعادة تعيين كلمة المرور لحسابك. اضغطي على الرابط التالي خلال ساعة:")),
		h.P(h.A(h.Href(link), g.Text("إعادة تعيين كلمة المرور"))),
		h.P(g.Text("إذا لم تطلبي ذلك فتجاهلي هذه الرسالة.")),
	)
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendReset renders and sends a reset email.
func SendReset(ctx context.Context, s Sender, baseURL, to, token string) error {
	body, err := ResetBody(baseURL, token)
	if err != nil {
		return err
	}
	return s.Send(ctx, to, ResetSubject, body)
}
