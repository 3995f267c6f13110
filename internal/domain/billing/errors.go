package billing

import (
	"errors"
	"strings"

	"github.com/sangkips/tableorder-api/pkg/apperror"
)

// ErrInvalidInput is matched by every ValidationError.
var ErrInvalidInput = errors.New("billing: invalid input")

// ValidationError lists every rejected line item or settings field.
type ValidationError struct {
	Fields []apperror.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// AppError converts the validation failure into a 422 response error.
func (e *ValidationError) AppError() *apperror.AppError {
	return apperror.NewValidationError(e.Fields)
}

type fieldErrors []apperror.FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, apperror.FieldError{Field: field, Message: message})
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
