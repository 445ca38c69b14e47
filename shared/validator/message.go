package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required":    "{field} is required",
	"required_if": "{field} is required",
	"gte":         "{field} must be greater than or equal to {param}",
	"gt":          "{field} must be greater than {param}",
	"lte":         "{field} must be less than or equal to {param}",
	"oneof":       "{field} must be one of {param}",
	"max":         "{field} must be less than or equal to {param}",
	"min":         "{field} must be greater than or equal to {param}",
	"email":       "{field} must be a valid email address",
	"uuid":        "{field} must be a valid uuid",
	"url":         "{field} must be a valid url",
	"latitude":    "{field} must be a valid latitude",
	"longitude":   "{field} must be a valid longitude",
	"mimetypes":   "{field} must be one of {param}",
	"maxfilesize": "{field} must not exceed {param} MB",
	"gtfield":     "{field} must be after {param}",
	"parkspot":    "{field} has an unsupported value",
}

func render(e val.FieldError) string {
	tmpl, ok := messages[e.Tag()]
	if !ok {
		return e.Error()
	}

	return strings.NewReplacer("{field}", e.Field(), "{param}", e.Param()).Replace(tmpl)
}

// message returns the first field error in human readable form.
func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) || len(valErrors) == 0 {
		return err.Error()
	}

	return render(valErrors[0])
}

// details maps every failing field to its message.
func details(err error) map[string]any {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return nil
	}

	out := make(map[string]any, len(valErrors))
	for _, e := range valErrors {
		out[e.Field()] = render(e)
	}

	return out
}
