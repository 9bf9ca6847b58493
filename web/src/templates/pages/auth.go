package pages

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/nfrund/zina/internal/view/dto/auth"
)

// Login is the sign-in form.
func Login(data auth.LoginData) g.Node {
	return panel("تسجيل الدخول",
		h.Form(
			h.Method("post"),
			h.Action("/login"),
			g.If(data.Next != "", h.Input(h.Type("hidden"), h.Name("next"), h.Value(data.Next))),
			field("email", "البريد الإلكتروني", "email", "email", data.Email, h.Required(), h.AutoComplete("email")),
			field("password", "كلمة المرور", "password", "password", "", h.Required(), h.AutoComplete("current-password")),
			submit("دخول"),
		),
		h.P(h.Class("panel-links"),
			h.A(h.Href("/forgot-password"), g.Text("نسيتِ كلمة المرور؟")),
			g.Text(" · "),
			h.A(h.Href("/register"), g.Text("إنشاء حساب جديد")),
		),
	)
}

// Register is the sign-up form.
func Register(data auth.RegisterData) g.Node {
	return panel("إنشاء حساب",
		h.Form(
			h.Method("post"),
			h.Action("/register"),
			field("name", "الاسم", "text", "name", data.Name, h.Required(), h.AutoComplete("name")),
			field("email", "البريد الإلكتروني", "email", "email", data.Email, h.Required(), h.AutoComplete("email")),
			field("password", "كلمة المرور", "password", "password", "", h.Required(), g.Attr("minlength", "8"), h.AutoComplete("new-password")),
			field("password_confirm", "تأكيد كلمة المرور", "password", "password_confirm", "", h.Required(), h.AutoComplete("new-password")),
			submit("إنشاء الحساب"),
		),
		h.P(h.Class("panel-links"), g.Text("لديكِ حساب؟ "), h.A(h.Href("/login"), g.Text("سجّلي الدخول"))),
	)
}

// ForgotPassword asks for the email to send a reset link to.
func ForgotPassword(data auth.ForgotPasswordData) g.Node {
	return panel("استعادة كلمة المرور",
		h.P(g.Text("أدخلي بريدك الإلكتروني وسنرسل لكِ رابطاً لإعادة تعيين كلمة المرور.")),
		h.Form(
			h.Method("post"),
			h.Action("/forgot-password"),
			field("email", "البريد الإلكتروني", "email", "email", data.Email, h.Required(), h.AutoComplete("email")),
			submit("إرسال الرابط"),
		),
	)
}

// ResetPassword sets a new password with the token from the reset link.
func ResetPassword(data auth.ResetPasswordData) g.Node {
	return panel("تعيين كلمة مرور جديدة",
		h.Form(
			h.Method("post"),
			h.Action("/reset-password"),
			h.Input(h.Type("hidden"), h.Name("token"), h.Value(data.Token)),
			field("password", "كلمة المرور الجديدة", "password", "password", "", h.Required(), g.Attr("minlength", "8"), h.AutoComplete("new-password")),
			field("password_confirm", "تأكيد كلمة المرور", "password", "password_confirm", "", h.Required(), h.AutoComplete("new-password")),
			submit("حفظ"),
		),
	)
}
