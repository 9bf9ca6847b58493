// Package auth holds the values the sign-in, registration and password
// reset forms are re-rendered with.
package auth

// LoginData pre-fills the login form.
type LoginData struct {
	Email string
	// Next is a local path to return to after signing in.
	Next string
}

type RegisterData struct {
	Name  string
	Email string
}

type ForgotPasswordData struct {
	Email string
}

// ResetPasswordData carries the emailed token through the reset form.
type ResetPasswordData struct {
	Token string
}
