// Package validate adapts go-playground/validator to Echo's Validator
// interface and registers the platform's custom rules.
package validate

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator wraps a validator.Validate instance for Echo.  Assign an
// instance to echo.Echo.Validator and call c.Validate(req) in handlers.
type Validator struct {
	v *validator.Validate
}

// New builds the validator with custom rules registered.
func New() *Validator {
	v := validator.New()
	// cpf: exactly 11 digits, no formatting.
	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 11 {
			return false
		}
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
	// hhmm: "HH:MM" or "HH:MM:SS" clock time.
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 5 && len(s) != 8 {
			return false
		}
		if s[2] != ':' || (len(s) == 8 && s[5] != ':') {
			return false
		}
		for i, r := range s {
			if i == 2 || i == 5 {
				continue
			}
			if r < '0' || r > '9' {
				return false
			}
		}
		return s[0] <= '2'
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator.  Failures become a 400 with the
// validator's message so handlers can simply `return c.Validate(req)`.
func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
