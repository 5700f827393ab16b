package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrEntryNotFound        = errors.New("ledger entry not found")
	ErrDuplicateActiveEntry = errors.New("an active entry already exists for this lender and borrower")
	ErrInvalidEntryField    = errors.New("invalid entry field")
	ErrMailDelivery         = errors.New("mail delivery failed")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeDuplicateActiveEntry = "DUPLICATE_ACTIVE_ENTRY"
	ErrCodeEntryNotFound        = "ENTRY_NOT_FOUND"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeMailError            = "MAIL_ERROR"
)

// Wrap common errors with business context

func WrapValidationError(field, message string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("%s: %s", field, message),
		ErrInvalidEntryField,
	)
}

func WrapDuplicateActiveEntry() *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateActiveEntry,
		"An active entry already exists for this lender and borrower.",
		ErrDuplicateActiveEntry,
	)
}

func WrapEntryNotFound(kind string) *BusinessError {
	return NewBusinessError(
		ErrCodeEntryNotFound,
		fmt.Sprintf("%s money record not found.", kind),
		ErrEntryNotFound,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapMailError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeMailError,
		"mail delivery failed",
		err,
	)
}

// CodeOf returns the business error code carried by err, or an empty string.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
