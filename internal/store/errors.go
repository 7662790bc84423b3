package store

import (
	"errors"
	"fmt"
)

// NotFoundError: the referenced entity did not exist at lookup time.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// ValidationError: caller-supplied input is invalid. Reported before any
// mutation; safe to fix and retry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConflictError: the operation would break a referential-history rule,
// e.g. deleting a product that appears in past orders.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func NotFound(entity string) error           { return &NotFoundError{Entity: entity} }
func Invalid(format string, a ...any) error  { return &ValidationError{Reason: fmt.Sprintf(format, a...)} }
func Conflict(format string, a ...any) error { return &ConflictError{Reason: fmt.Sprintf(format, a...)} }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
