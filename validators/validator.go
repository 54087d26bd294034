package validators

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo's Validator interface
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate validates the bound request struct, mapping violations to a
// field→message structure the client can display next to its inputs
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, FieldErrors(err))
	}
	return nil
}

// FieldErrors converts validation errors to a field→message map
func FieldErrors(err error) map[string]string {
	errors := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["error"] = err.Error()
		return errors
	}
	for _, fieldErr := range validationErrors {
		errors[fieldErr.Field()] = messageFor(fieldErr)
	}
	return errors
}

func messageFor(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "Please enter " + fieldErr.Field()
	case "min":
		return "Minimum " + fieldErr.Field() + " length is " + fieldErr.Param() + " characters"
	case "max":
		return "Maximum " + fieldErr.Field() + " length is " + fieldErr.Param() + " characters"
	case "url":
		return "Please enter a valid URL"
	default:
		return "Invalid value for " + fieldErr.Field()
	}
}
