// Package forms holds the create and edit form controllers that sit between
// user input and the record store.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/MarcoPoloResearchLab/roster/internal/users"
	"github.com/go-playground/validator/v10"
)

const (
	FieldName  = "name"
	FieldAge   = "age"
	FieldEmail = "email"
	FieldPhone = "phone"
)

var (
	// ErrValidationFailed indicates that required draft fields are missing.
	ErrValidationFailed = errors.New("forms: validation failed")
	// ErrMissingIdentity indicates that the edited record has no identifier.
	ErrMissingIdentity = errors.New("forms: record has no identity")
	// ErrSubmitInFlight indicates that a submit is already running for the form.
	ErrSubmitInFlight = errors.New("forms: submit already in flight")
	// ErrFormClosed indicates that the edit form was already submitted or cancelled.
	ErrFormClosed = errors.New("forms: form is closed")
	// ErrUnknownField indicates that SetField was called with an unknown field name.
	ErrUnknownField = errors.New("forms: unknown field")
)

// Draft holds form input before submission. Values may be invalid while editing.
type Draft struct {
	Name  string `form:"name" validate:"required"`
	Age   int    `form:"age" validate:"required,gt=0"`
	Email string `form:"email" validate:"required"`
	Phone int    `form:"phone" validate:"gte=0"`
}

// DraftFrom seeds a draft from stored fields.
func DraftFrom(fields users.Fields) Draft {
	return Draft{
		Name:  fields.Name,
		Age:   fields.Age,
		Email: fields.Email,
		Phone: fields.Phone,
	}
}

// Fields converts the draft into store fields.
func (d Draft) Fields() users.Fields {
	return users.Fields{
		Name:  d.Name,
		Age:   d.Age,
		Email: d.Email,
		Phone: d.Phone,
	}
}

// ValidationError lists the draft fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrValidationFailed, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

var draftValidator = newDraftValidator()

func newDraftValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// Validate checks that name, age and email are filled in.
func (d Draft) Validate() error {
	err := draftValidator.Struct(d)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	invalid := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		invalid = append(invalid, fieldError.Field())
	}
	return &ValidationError{Fields: invalid}
}

// withField returns a copy of the draft with one field set from raw text input.
// Numeric fields coerce empty or unparsable input to 0.
func (d Draft) withField(name, value string) (Draft, error) {
	switch name {
	case FieldName:
		d.Name = value
	case FieldAge:
		d.Age = coerceNumber(value)
	case FieldEmail:
		d.Email = value
	case FieldPhone:
		d.Phone = coerceNumber(value)
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return d, nil
}

func coerceNumber(value string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return parsed
}
