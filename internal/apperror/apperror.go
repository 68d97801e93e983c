// Package apperror defines the application's error taxonomy.
//
// Every error a service returns to a handler is (or wraps) an *AppError whose
// Err field is one of the sentinel values below. Handlers use errors.Is against
// the sentinels to pick an HTTP status; the Message is safe to show to clients.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrDuplicateAccount   = errors.New("duplicate account")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

type AppError struct {
	Err     error  // sentinel the error belongs to
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundMessage is NotFound with a caller-chosen message, for lookups that
// are not keyed by an id (email, share hash).
func NotFoundMessage(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a unique-constraint collision in the store.
func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict on %s", resource, key),
	}
}

// DuplicateAccount reports a signup for an email that is already registered.
func DuplicateAccount() *AppError {
	return &AppError{
		Err:     ErrDuplicateAccount,
		Message: "user already exists",
		Field:   "email",
	}
}

// InvalidCredentials reports a password that does not match the stored hash.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "incorrect credentials",
	}
}

// Unauthenticated reports a missing, malformed or expired bearer token.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}
