// Package forms decodes and validates the HTML forms posted to the site.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ticketron/ticketron/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their form name so errors line up with inputs.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Errors maps a form field name to its message.
type Errors map[string]string

// Validate runs struct tags and returns per-field messages, or nil.
func Validate(form interface{}) Errors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return Errors{"__all__": err.Error()}
	}

	out := Errors{}
	for _, fe := range validationErrors {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fieldMessage(fe)
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "oneof", "uuid":
		return "Select a valid choice."
	default:
		return fmt.Sprintf("Failed validation for '%s'.", fe.Tag())
	}
}

// Merge adds other into e and returns the result; nil stays nil when both are empty.
func (e Errors) Merge(other Errors) Errors {
	if len(other) == 0 {
		return e
	}
	if e == nil {
		e = Errors{}
	}
	for k, v := range other {
		if _, exists := e[k]; !exists {
			e[k] = v
		}
	}
	return e
}

func parseOptionalDate(field, raw string, errs Errors) (*time.Time, Errors) {
	if strings.TrimSpace(raw) == "" {
		return nil, errs
	}
	day, err := domain.ParseDate(raw)
	if err != nil {
		return nil, errs.Merge(Errors{field: "Enter a valid date."})
	}
	return &day, errs
}

func parseOptionalID(field, raw string, errs Errors) (*int64, Errors) {
	if strings.TrimSpace(raw) == "" {
		return nil, errs
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, errs.Merge(Errors{field: "Select a valid choice."})
	}
	return &id, errs
}

func optionalString(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}

func checkbox(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
