package validators

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// IsConsent accepts only a boolean field that is set to true.
func IsConsent(fl validator.FieldLevel) bool {
	field := fl.Field()
	return field.Kind() == reflect.Bool && field.Bool()
}

// NotBlank rejects strings that are empty once surrounding whitespace is removed.
func NotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// Register installs the custom tags on validate.
func Register(validate *validator.Validate) {
	_ = validate.RegisterValidation("consent", IsConsent)
	_ = validate.RegisterValidation("notblank", NotBlank)
}
