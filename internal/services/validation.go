package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

// MaxAge is how many years back a birthdate may lie.
const MaxAge = 100

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string
	Rule    string
	Param   string
	Message string
}

func (f FieldError) String() string {
	return f.Field + " " + f.Message
}

// ValidationError lists every rejected field of a form.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("%v: %s", common.ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return common.ErrValidation }

func invalid(field, rule, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Rule: rule, Message: message}}}
}

// newValidator returns a validator that names fields by their json tag and
// knows the birthdate rule relative to now.
func newValidator(now func() time.Time) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})

	// registration cannot fail for a well-formed tag name
	_ = v.RegisterValidation("birthdate", func(fl validator.FieldLevel) bool {
		d, err := models.ParseDate(fl.Field().String())
		if err != nil {
			return false
		}
		return birthdateInRange(d, models.DateOf(now()))
	})

	_ = v.RegisterValidation("utf8", func(fl validator.FieldLevel) bool {
		return utf8.ValidString(fl.Field().String())
	})

	return v
}

// birthdateInRange reports whether d lies within the last MaxAge years up to
// and including today.
func birthdateInRange(d, today models.Date) bool {
	earliest := today.AddYears(-MaxAge)
	return !d.Before(earliest) && !d.After(today)
}

// toValidationError converts validator output into a *ValidationError.
// Other errors are returned unchanged.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: validationMessage(fe.Tag(), fe.Param()),
		})
	}
	return &ValidationError{Fields: fields}
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "utf8":
		return "must be valid UTF-8 text"
	case "birthdate":
		return fmt.Sprintf("must be a %s date within the last %d years and not in the future", models.DateLayout, MaxAge)
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
