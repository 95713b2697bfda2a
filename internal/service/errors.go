package service

import (
	"errors"
	"fmt"

	"github.com/straye-as/crm-core/internal/database"
	"gorm.io/gorm"
)

// Common service errors
var (
	// ErrNotFound is returned when a referenced stage, lead, project or client does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when an operation is blocked by referencing rows
	ErrConflict = errors.New("resource conflict")

	// ErrForbidden is returned when the caller lacks the role required for an action
	ErrForbidden = errors.New("forbidden")

	// ErrStorage is returned when the database rejected or aborted an operation
	ErrStorage = errors.New("storage failure")

	// ErrRetryable is a storage failure caused by a lost race; the caller may retry
	ErrRetryable = fmt.Errorf("%w: transient conflict", ErrStorage)
)

var serviceErrors = []error{ErrNotFound, ErrInvalidInput, ErrConflict, ErrForbidden, ErrStorage}

// storageError classifies an error escaping a repository or transaction.
// Errors already carrying a service sentinel pass through unchanged.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range serviceErrors {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	switch {
	case database.IsRetryable(err):
		return fmt.Errorf("%w: %s: %v", ErrRetryable, op, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %s: referenced by other records", ErrConflict, op)
	default:
		return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
	}
}

// notFound maps gorm.ErrRecordNotFound to ErrNotFound for the named entity
func notFound(entity string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	}
	return err
}
