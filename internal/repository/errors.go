// Package repository defines error types that are reused across multiple
// repositories and the domain packages built on top of them. These
// sentinel values allow higher layers such as handlers to distinguish
// between different failure scenarios: ErrNotFound maps to 404,
// ErrConflict to 409 and ErrValidation to 400.
package repository

import (
    "errors"
    "fmt"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// they are not allowed to perform. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as deleting a
// workshop that still has registrations or a stale version on an
// optimistic update. Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")

// ErrValidation is the sentinel matched by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError describes malformed input. It is always raised before
// any write so a rejected request leaves stored state untouched.
type ValidationError struct {
    Field   string
    Message string
}

func (e *ValidationError) Error() string {
    if e.Field == "" {
        return e.Message
    }
    return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
    return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound wraps ErrNotFound with the kind of entity that was missing so
// handlers can render "course not found" style messages.
func NotFound(kind string) error {
    return fmt.Errorf("%s %w", kind, ErrNotFound)
}
