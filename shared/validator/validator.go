package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"parkspot/config"
	"parkspot/shared/base64"
	"parkspot/shared/constant"
	"parkspot/shared/failure"

	val "github.com/go-playground/validator/v10"
)

const (
	bytesPerKB = 1024.0
	structTag  = "parkspot"
)

var validate *val.Validate

// selfValidator lets a field type plug its own rule in through the `parkspot` tag.
type selfValidator interface {
	Validate(cfg *config.Config) error
}

func validateMimetype(field val.FieldLevel) bool {
	var contentType string

	switch v := field.Field().Interface().(type) {
	case multipart.FileHeader:
		contentType = v.Header.Get(constant.RequestHeaderContentType)
	case string:
		contentType = base64.GetContentType(v)
	}

	if contentType == "" {
		return false
	}

	return slices.Contains(strings.Fields(field.Param()), contentType)
}

func validateFileSize(field val.FieldLevel) bool {
	var size int

	switch v := field.Field().Interface().(type) {
	case multipart.FileHeader:
		size = int(v.Size)
	case string:
		size = len(v)
	}

	maxSizeMB, err := strconv.ParseFloat(field.Param(), 64)
	if err != nil {
		return false
	}

	return size <= int(maxSizeMB*bytesPerKB*bytesPerKB)
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")

	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

func init() {
	cfg := config.Get()

	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	rules := map[string]val.Func{
		structTag: func(fl val.FieldLevel) bool {
			v, ok := fl.Field().Interface().(selfValidator)

			return ok && v.Validate(cfg) == nil
		},
		"empty":       func(fl val.FieldLevel) bool { return fl.Field().IsZero() },
		"mimetypes":   validateMimetype,
		"maxfilesize": validateFileSize,
	}

	for tag, fn := range rules {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}

// Validate decodes a JSON body into data and validates it.
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

// ValidateOptional is Validate for endpoints whose body may be omitted entirely.
func ValidateOptional[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil && !errors.Is(err, io.EOF) {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.Validation(message(err), details(err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.Validation(message(err), details(err)) //nolint:wrapcheck
	}

	return nil
}
