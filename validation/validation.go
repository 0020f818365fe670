// Package validation checks request payloads and reports failures per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// phoneRegex accepts an optional leading +, then digits with spaces, dots,
// dashes or parentheses, holding 7 to 15 digits in total.
var phoneRegex = regexp.MustCompile(`^\+?[0-9 ().-]+$`)

// Errors maps a field key (for example "session_ids.0") to its messages.
type Errors map[string][]string

// Add appends msg to field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e[f], " ")))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Validator wraps go-playground/validator. It satisfies echo.Validator.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator that names fields after their json tags and knows
// the "phone" and "accepted" rules.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("accepted", validateAccepted)

	return &Validator{validate: v}
}

// Validate checks i and returns Errors on failure.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := Errors{}
	for _, fe := range verrs {
		key := fieldKey(fe.Field())
		out.Add(key, message(key, fe))
	}
	return out
}

func validatePhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !phoneRegex.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

func validateAccepted(fl validator.FieldLevel) bool {
	f := fl.Field()
	return f.Kind() == reflect.Bool && f.Bool()
}

// fieldKey turns "session_ids[0]" into "session_ids.0".
func fieldKey(field string) string {
	field = strings.ReplaceAll(field, "[", ".")
	return strings.ReplaceAll(field, "]", "")
}

func message(key string, fe validator.FieldError) string {
	label := key
	if !strings.Contains(key, ".") {
		label = strings.ReplaceAll(key, "_", " ")
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", label)
	case "phone":
		return fmt.Sprintf("The %s field format is invalid.", label)
	case "accepted":
		return fmt.Sprintf("The %s field must be accepted.", label)
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("The %s field must not have more than %s items.", label, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("The %s field must have at least %s items.", label, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s characters.", label, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s field must be greater than %s.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}
