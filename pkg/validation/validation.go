package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "tradegate/pkg/domain-errors"
	s "tradegate/pkg/string"
)

var defaultValidator = newValidator()

var (
	alphaSpaceRe = regexp.MustCompile(`^[A-Za-z\s]+$`)
	upperRe      = regexp.MustCompile(`[A-Z]`)
	lowerRe      = regexp.MustCompile(`[a-z]`)
	digitRe      = regexp.MustCompile(`[0-9]`)
	specialRe    = regexp.MustCompile(`[@#$%]`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpaceRe.MatchString(fl.Field().String())
	})
	// Upstream password policy: at least one uppercase, one lowercase, one
	// digit, and one of @#$%. Length is enforced separately with min=8.
	_ = v.RegisterValidation("complexity", func(fl validator.FieldLevel) bool {
		p := fl.Field().String()
		return upperRe.MatchString(p) && lowerRe.MatchString(p) &&
			digitRe.MatchString(p) && specialRe.MatchString(p)
	})
	return v
}

// Validate validates a struct using the default validator and returns a domain
// error carrying the first failure.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// ValidateAll validates a struct and reports every failing field at once, so
// callers can surface the full set of problems in a single pass instead of
// one per submission. The returned map is keyed by snake_case field name and
// is nil when the struct is valid.
func ValidateAll(req any) map[string]string {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{"request": "invalid request body"}
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		field := fieldName(fe)
		if _, seen := fields[field]; seen {
			continue
		}
		fields[field] = tagMessage(field, fe)
	}
	return fields
}

// ErrorMessage converts a validator error into a human-readable message.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}
	fe := validationErrs[0]
	return tagMessage(fieldName(fe), fe)
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		name = fe.StructField()
	}
	return s.ToSnakeCase(name)
}

func tagMessage(field string, fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s does not match %s", field, s.ToSnakeCase(fe.Param()))
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", field)
	case "alphanum":
		return fmt.Sprintf("%s must be alphanumeric", field)
	case "alphaspace":
		return fmt.Sprintf("%s can only contain letters and spaces", field)
	case "complexity":
		return fmt.Sprintf("%s must contain an uppercase letter, a lowercase letter, a number, and one of @#$%%", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	default:
		if field == "" {
			return "invalid request body"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}
