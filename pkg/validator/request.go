package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

const (
	tagJSON      = "json"
	tagSkipField = "-"

	errMaxParamFmt    = "%s must not exceed %s characters"
	errGreaterThanFmt = "%s must be greater than %s"
	errMinLengthFmt   = "%s must be at least %s characters"
	errOneOfFmt       = "%s must be one of: %s"
	errInvalidFmt     = "%s is invalid"
)

// RequestValidator checks `validate` struct tags on decoded request bodies and
// reports the first failure using the field's JSON name. It satisfies echo.Validator.
type RequestValidator struct {
	validate *playground.Validate
}

func NewRequestValidator() *RequestValidator {
	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return errors.New(describe(fieldErrs[0]))
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get(tagJSON), ",")
	if name == tagSkipField {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func describe(fe playground.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf(errRequiredFmt, field)
	case "max":
		return fmt.Sprintf(errMaxParamFmt, field, fe.Param())
	case "min":
		return fmt.Sprintf(errMinLengthFmt, field, fe.Param())
	case "gt":
		return fmt.Sprintf(errGreaterThanFmt, field, fe.Param())
	case "oneof":
		return fmt.Sprintf(errOneOfFmt, field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return errEmailInvalidFmt
	default:
		return fmt.Sprintf(errInvalidFmt, field)
	}
}
