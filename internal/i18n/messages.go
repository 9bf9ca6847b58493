// Package i18n holds the Arabic UI strings, error-to-message mapping and the
// Arabic text helpers shared by search, listings and views.
package i18n

import (
	"errors"

	"github.com/nfrund/zina/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The key doubles as the English fallback text.
const (
	MsgLoginFailed       = "Invalid email or password."
	MsgLoginSuccess      = "Welcome back, %s!"
	MsgRegisterSuccess   = "Your account was created successfully."
	MsgUserExists        = "An account with this email already exists."
	MsgLogoutSuccess     = "You have been signed out."
	MsgSessionExpired    = "Your session has expired. Please sign in again."
	MsgForgotSent        = "If an account with that email exists, a password reset link has been sent."
	MsgResetSuccess      = "Your password has been reset. You can sign in now."
	MsgResetInvalid      = "The reset link is invalid or has expired."
	MsgResetTokenMissing = "A valid reset link is required to change your password."
	MsgProfileSaved      = "Your profile has been updated."
	MsgPasswordChanged   = "Your password has been changed."
	MsgWrongPassword     = "The current password is incorrect."
	MsgPasswordMismatch  = "Passwords do not match."
	MsgPasswordTooShort  = "Password must be at least 8 characters long."
	MsgInvalidEmail      = "Please enter a valid email address."
	MsgRequired          = "Please fill in all required fields."
	MsgInvalidPhone      = "Please enter the phone number in international format, e.g. +966500000000."
	MsgInvalidURL        = "Please enter a valid link."
	MsgNameLength        = "The name must be between 2 and 80 characters."
	MsgSamePassword      = "The new password must be different from the current one."
	MsgGenericError      = "Something went wrong. Please try again."
	MsgUpstreamDown      = "The store is temporarily unavailable. Please try again shortly."
	MsgNotFound          = "The page you are looking for does not exist."
	MsgFavoriteAdded     = "Added to favorites."
	MsgFavoriteRemoved   = "Removed from favorites."
	MsgFavoritesCleared  = "Your favorites list has been cleared."
	MsgFavoritesPruned   = "Some favorites are no longer available and were removed."
	MsgNotificationsRead = "All notifications were marked as read."
	MsgActivityFavorite  = "You added %s to your favorites."
	MsgActivityUnfavored = "You removed %s from your favorites."
	MsgActivityProfile   = "Your profile details were updated."
	MsgActivitySignedIn  = "New sign-in to your account."
	MsgTooManyRequests   = "Too many attempts. Please wait a minute and try again."
	MsgSearchMinLength   = "Type at least two letters to search."
	MsgNoResults         = "No products match your search."
	MsgComingSoon        = "This section is coming soon."
)

var arabic = map[string]string{
	MsgLoginFailed:       "البريد الإلكتروني أو كلمة المرور غير صحيحة.",
	MsgLoginSuccess:      "أهلاً بعودتك، %s!",
	MsgRegisterSuccess:   "تم إنشاء حسابك بنجاح.",
	MsgUserExists:        "يوجد حساب مسجل بهذا البريد الإلكتروني.",
	MsgLogoutSuccess:     "تم تسجيل خروجك.",
	MsgSessionExpired:    "انتهت صلاحية الجلسة. يرجى تسجيل الدخول مرة أخرى.",
	MsgForgotSent:        "إذا كان هناك حساب بهذا البريد، فقد أرسلنا رابط إعادة تعيين كلمة المرور.",
	MsgResetSuccess:      "تمت إعادة تعيين كلمة المرور. يمكنك تسجيل الدخول الآن.",
	MsgResetInvalid:      "رابط إعادة التعيين غير صالح أو منتهي الصلاحية.",
	MsgResetTokenMissing: "يلزم رابط إعادة تعيين صالح لتغيير كلمة المرور.",
	MsgProfileSaved:      "تم تحديث ملفك الشخصي.",
	MsgPasswordChanged:   "تم تغيير كلمة المرور.",
	MsgWrongPassword:     "كلمة المرور الحالية غير صحيحة.",
	MsgPasswordMismatch:  "كلمتا المرور غير متطابقتين.",
	MsgPasswordTooShort:  "يجب أن تتكون كلمة المرور من ٨ أحرف على الأقل.",
	MsgInvalidEmail:      "يرجى إدخال بريد إلكتروني صحيح.",
	MsgRequired:          "يرجى تعبئة جميع الحقول المطلوبة.",
	MsgInvalidPhone:      "يرجى إدخال رقم الجوال بالصيغة الدولية، مثل +966500000000.",
	MsgInvalidURL:        "يرجى إدخال رابط صحيح.",
	MsgNameLength:        "يجب أن يكون الاسم بين حرفين و٨٠ حرفاً.",
	MsgSamePassword:      "يجب أن تختلف كلمة المرور الجديدة عن الحالية.",
	MsgGenericError:      "حدث خطأ ما. يرجى المحاولة مرة أخرى.",
	MsgUpstreamDown:      "المتجر غير متاح مؤقتاً. يرجى المحاولة بعد قليل.",
	MsgNotFound:          "الصفحة التي تبحثين عنها غير موجودة.",
	MsgFavoriteAdded:     "تمت الإضافة إلى المفضلة.",
	MsgFavoriteRemoved:   "تمت الإزالة من المفضلة.",
	MsgFavoritesCleared:  "تم إفراغ قائمة المفضلة.",
	MsgFavoritesPruned:   "بعض المنتجات في المفضلة لم تعد متوفرة وتمت إزالتها.",
	MsgNotificationsRead: "تم تعليم جميع الإشعارات كمقروءة.",
	MsgActivityFavorite:  "أضفت %s إلى المفضلة.",
	MsgActivityUnfavored: "أزلت %s من المفضلة.",
	MsgActivityProfile:   "تم تحديث بيانات ملفك الشخصي.",
	MsgActivitySignedIn:  "تسجيل دخول جديد إلى حسابك.",
	MsgTooManyRequests:   "محاولات كثيرة. يرجى الانتظار دقيقة ثم المحاولة مجدداً.",
	MsgSearchMinLength:   "اكتبي حرفين على الأقل للبحث.",
	MsgNoResults:         "لا توجد منتجات مطابقة لبحثك.",
	MsgComingSoon:        "هذا القسم قادم قريباً.",
}

var printer *message.Printer

func init() {
	b := catalog.NewBuilder(catalog.Fallback(language.Arabic))
	for key, msg := range arabic {
		if err := b.SetString(language.Arabic, key, msg); err != nil {
			panic("i18n: " + err.Error())
		}
	}
	printer = message.NewPrinter(language.Arabic, message.Catalog(b))
}

// T returns the Arabic text for key, formatted with args.
func T(key string, args ...any) string {
	return printer.Sprintf(key, args...)
}

// ErrorMessage maps an error onto the message shown to the customer.
func ErrorMessage(err error) string {
	var fieldErr *domain.FieldError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fieldErr):
		return T(fieldMessage(fieldErr))
	case errors.Is(err, domain.ErrInvalidCredentials):
		return T(MsgLoginFailed)
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return T(MsgUserExists)
	case errors.Is(err, domain.ErrInvalidResetToken):
		return T(MsgResetInvalid)
	case errors.Is(err, domain.ErrUnauthorized):
		return T(MsgSessionExpired)
	case errors.Is(err, domain.ErrNotFound):
		return T(MsgNotFound)
	case errors.Is(err, domain.ErrCategoryPlaceholder):
		return T(MsgComingSoon)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return T(MsgUpstreamDown)
	case errors.Is(err, domain.ErrValidation):
		return T(MsgRequired)
	default:
		return T(MsgGenericError)
	}
}

func fieldMessage(e *domain.FieldError) string {
	switch e.Tag {
	case "email":
		return MsgInvalidEmail
	case "eqfield":
		return MsgPasswordMismatch
	case "nefield":
		return MsgSamePassword
	case "e164":
		return MsgInvalidPhone
	case "url":
		return MsgInvalidURL
	case "min", "max":
		if e.Field == "Name" {
			return MsgNameLength
		}
		return MsgPasswordTooShort
	default:
		return MsgRequired
	}
}
