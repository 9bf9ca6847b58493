package domain

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a package-level validator instance.
// Using a single instance is more efficient as it caches struct information.
var validatorInstance = validator.New()

// User is the profile of a signed-in customer.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// DisplayName falls back to the email address when no name is set.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Tokens is the credential pair issued by the upstream API.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Empty reports whether no access token is present.
func (t Tokens) Empty() bool {
	return t.AccessToken == ""
}

// AuthResult is the upstream response to login, registration and refresh.
type AuthResult struct {
	User User `json:"user"`
	Tokens
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Registration is the sign-up form.
type Registration struct {
	Name            string `json:"name" form:"name" validate:"required,min=2,max=80"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"-" form:"password_confirm" validate:"required,eqfield=Password"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name      string `json:"name" form:"name" validate:"required,min=2,max=80"`
	Phone     string `json:"phone,omitempty" form:"phone" validate:"omitempty,e164"`
	AvatarURL string `json:"avatar_url,omitempty" form:"avatar_url" validate:"omitempty,url"`
}

// PasswordChange is the signed-in password change form.
type PasswordChange struct {
	Current         string `json:"current_password" form:"current_password" validate:"required"`
	New             string `json:"new_password" form:"new_password" validate:"required,min=8,max=72,nefield=Current"`
	PasswordConfirm string `json:"-" form:"password_confirm" validate:"required,eqfield=New"`
}

// PasswordReset completes the forgot-password flow.
type PasswordReset struct {
	Token           string `json:"token" form:"token" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"-" form:"password_confirm" validate:"required,eqfield=Password"`
}

// ForgotPassword requests a reset link.
type ForgotPassword struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

func (c Credentials) Validate() error { return validate(c) }
func (r Registration) Validate() error { return validate(r) }
func (p ProfileUpdate) Validate() error { return validate(p) }
func (p PasswordChange) Validate() error { return validate(p) }
func (p PasswordReset) Validate() error { return validate(p) }
func (f ForgotPassword) Validate() error { return validate(f) }

// FieldError names the first field that failed validation together with the
// failing rule, so handlers can pick a localized message.
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %s failed %q", ErrValidation, e.Field, e.Tag)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

func validate(v any) error {
	err := validatorInstance.Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field(), Tag: verrs[0].Tag()}
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
