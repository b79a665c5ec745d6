package services

import (
	"errors"
	"fmt"

	"github.com/exam-coach/coach-service/internal/repositories"
)

// ValidationError indicates the request failed input validation. Mapped to
// HTTP 400 by the handler layer.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NotFoundError indicates a missing resource. Mapped to HTTP 404.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func NewNotFoundError(resource string, id interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Resource, e.ID)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFoundError reports whether err represents a missing resource at
// either the service or repository layer.
func IsNotFoundError(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe) || repositories.IsNotFoundError(err)
}
