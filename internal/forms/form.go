// Package forms carries submitted values and field errors back to templates.
package forms

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Form is the template-facing state of an HTML form
type Form struct {
	Values         map[string]string
	Errors         map[string]string
	NonFieldErrors []string
}

// New returns a form pre-filled with values
func New(values map[string]string) *Form {
	if values == nil {
		values = map[string]string{}
	}
	return &Form{Values: values, Errors: map[string]string{}}
}

// Get returns the submitted value of a field
func (f *Form) Get(field string) string {
	return f.Values[field]
}

// Error returns the error message of a field, if any
func (f *Form) Error(field string) string {
	return f.Errors[field]
}

// AddError records an error for a field. The first error wins.
func (f *Form) AddError(field, msg string) {
	if _, ok := f.Errors[field]; !ok {
		f.Errors[field] = msg
	}
}

// AddNonFieldError records an error that belongs to the form as a whole
func (f *Form) AddNonFieldError(msg string) {
	f.NonFieldErrors = append(f.NonFieldErrors, msg)
}

// Valid reports whether no error has been recorded
func (f *Form) Valid() bool {
	return len(f.Errors) == 0 && len(f.NonFieldErrors) == 0
}

// AddValidationErrors translates validator errors into field errors. Errors of
// any other type become non-field errors.
func (f *Form) AddValidationErrors(err error) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		f.AddNonFieldError(err.Error())
		return
	}
	for _, fe := range verrs {
		f.AddError(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "eqfield":
		return "The two password fields didn't match."
	case "numeric":
		return "Select a valid choice."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	}
	return "Enter a valid value."
}
