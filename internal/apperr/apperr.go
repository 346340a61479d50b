// Package apperr defines the error taxonomy shared by services and the HTTP
// layer. Services return these types; the HTTP layer maps them to status codes.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InsufficientStockError reports an order or cart quantity above the
// product's available stock.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// AuthenticationError reports missing or invalid credentials.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string { return "unauthenticated: " + e.Reason }

// Unauthenticated builds an AuthenticationError.
func Unauthenticated(reason string) error { return &AuthenticationError{Reason: reason} }

// AuthorizationError reports a caller lacking the role or ownership required.
// Reason is for logs only and is never sent to clients.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return "forbidden: " + e.Reason }

// Forbidden builds an AuthorizationError.
func Forbidden(reason string) error { return &AuthorizationError{Reason: reason} }

// ConflictError reports a uniqueness or concurrency conflict.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return "conflict: " + e.Message }

// Conflict builds a ConflictError.
func Conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps an underlying storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError unless it already belongs to
// the taxonomy, in which case it is returned unchanged.
func Persistence(op string, err error) error {
	if err == nil || IsDomain(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsDomain reports whether err is one of the client-facing taxonomy errors.
func IsDomain(err error) bool {
	var (
		ve  *ValidationError
		nf  *NotFoundError
		ise *InsufficientStockError
		ae  *AuthenticationError
		fe  *AuthorizationError
		ce  *ConflictError
		pe  *PersistenceError
	)
	return errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ise) ||
		errors.As(err, &ae) || errors.As(err, &fe) || errors.As(err, &ce) || errors.As(err, &pe)
}
