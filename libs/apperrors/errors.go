// Package apperrors classifies service errors so handlers can map them to HTTP statuses
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error classes. Wrap them with fmt.Errorf("%w: ...") or use the helpers below.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

// ValidationError carries per-field messages, keyed by JSON field name
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Unwrap lets errors.Is(err, ErrValidation) match
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid builds a validation error with a general message and optional field messages
func Invalid(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// InvalidField builds a validation error for a single field
func InvalidField(field, message string) *ValidationError {
	return &ValidationError{Message: "Données invalides", Fields: map[string]string{field: message}}
}

// NotFound returns an ErrNotFound carrying a user facing message
func NotFound(message string) error {
	return &classified{class: ErrNotFound, message: message}
}

// Forbidden returns an ErrForbidden carrying a user facing message
func Forbidden(message string) error {
	return &classified{class: ErrForbidden, message: message}
}

// Unauthorized returns an ErrUnauthorized carrying a user facing message
func Unauthorized(message string) error {
	return &classified{class: ErrUnauthorized, message: message}
}

// Conflict returns an ErrConflict carrying a user facing message
func Conflict(message string) error {
	return &classified{class: ErrConflict, message: message}
}

// classified is an error whose text is safe to show to API clients
type classified struct {
	class   error
	message string
}

func (e *classified) Error() string { return e.message }

func (e *classified) Unwrap() error { return e.class }

// PublicMessage returns the user facing message of a classified error, or "" when err carries none
func PublicMessage(err error) string {
	var c *classified
	if errors.As(err, &c) {
		return c.message
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	return ""
}

// Wrapf adds context to err while keeping its class
func Wrapf(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
