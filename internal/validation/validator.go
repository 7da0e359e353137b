// Package validation checks submitted forms and reports field level messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to its messages
type FieldErrors map[string][]string

// Add appends a message for field
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Validator wraps go-playground/validator with form-friendly messages
type Validator struct {
	v        *validator.Validate
	messages map[string]string
}

// New creates a validator that names fields after their form tag. messages
// overrides the generated message for a "field.tag" pair.
func New(messages map[string]string) *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := fld.Tag.Get(tag)
			if name == "" || name == "-" {
				continue
			}
			if i := strings.IndexByte(name, ','); i >= 0 {
				name = name[:i]
			}
			return name
		}
		return fld.Name
	})

	if messages == nil {
		messages = map[string]string{}
	}
	return &Validator{v: v, messages: messages}
}

// Validate checks s and returns nil or the field errors found
func (v *Validator) Validate(s any) (FieldErrors, error) {
	err := v.v.Struct(s)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, err
	}

	fields := make(FieldErrors, len(validationErrs))
	for _, e := range validationErrs {
		fields.Add(e.Field(), v.message(e))
	}
	return fields, nil
}

func (v *Validator) message(e validator.FieldError) string {
	if msg, ok := v.messages[e.Field()+"."+e.Tag()]; ok {
		return msg
	}
	return friendlyMessage(e)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "numeric":
		return "must be a number"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
