// Package apperr holds the error kinds shared by the progression services.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicate marks a write that hit a uniqueness constraint. It never
	// reaches a user; callers treat it as success.
	ErrDuplicate = errors.New("duplicate event")

	// ErrForbidden is returned before any write when the caller may not act on a resource.
	ErrForbidden = errors.New("forbidden")

	ErrNotFound = errors.New("not found")
)

// ValidationError is a failed precondition on user input. Message is safe to show to the user.
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

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StorageError is a genuine read/write failure against the database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage wraps err as a StorageError. A nil err stays nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}
