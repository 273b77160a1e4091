package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/college-enrolment-api/pkg/errors"
)

var (
	academicYearPattern = regexp.MustCompile(`^\d{4}/\d{2}$`)
	clockPattern        = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// NewValidator returns a validator reporting JSON field names and knowing the domain formats.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("academic_year", func(fl validator.FieldLevel) bool {
		return academicYearPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	return v
}

// validationFailure converts validator output into a VALIDATION_ERROR with per-field messages.
func validationFailure(err error, message string) *appErrors.Error {
	wrapped := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return wrapped
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = describeFieldError(fe)
	}
	return appErrors.WithDetails(wrapped, details)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "academic_year":
		return "must look like 2025/26"
	case "clock":
		return "must be a time in HH:MM"
	default:
		return "is invalid"
	}
}

// IsValidAcademicYear reports whether the token has the YYYY/YY shape.
func IsValidAcademicYear(year string) bool {
	return academicYearPattern.MatchString(year)
}
