package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
// Form types with their own Validate method (the domain forms) are checked
// with it, so handlers get domain.FieldError values either way.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

type selfValidating interface {
	Validate() error
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	if v, ok := i.(selfValidating); ok {
		return v.Validate()
	}
	return cv.validator.Struct(i)
}

// bindForm binds the posted form into dst, trims the text fields handlers
// care about and validates the result.
func bindForm[T any](c echo.Context, dst *T, trim ...*string) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return err
	}
	for _, s := range trim {
		*s = strings.TrimSpace(*s)
	}
	return c.Validate(*dst)
}

// SearchRequest is the query string of the search routes.
type SearchRequest struct {
	Query string `query:"q"`
	Page  int    `query:"page" validate:"gte=0"`
}
