package service

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	// ErrPermissionDenied is returned when the caller's scope or role
	// does not allow the action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEmailTaken is returned when an email is already registered
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on a failed login or wrong
	// current password
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCodigoTaken is returned when a sierra barcode already exists
	ErrCodigoTaken = errors.New("barcode already registered")

	// ErrSierraObsoleta is returned when registering work on a retired
	// sierra
	ErrSierraObsoleta = errors.New("sierra is retired")

	// ErrSalidaRegistrada is returned when writing a salida that already
	// exists
	ErrSalidaRegistrada = errors.New("salida already registered")

	// ErrHasDependents is returned when deleting a resource that still
	// has dependent rows
	ErrHasDependents = errors.New("resource has dependent records")

	// ErrRolNotFound is returned when a role id does not exist
	ErrRolNotFound = errors.New("role not found")
)

// BatchMissingError reports afilado ids that do not exist or are not
// visible to the caller.
type BatchMissingError struct {
	IDs []int64
}

func (e *BatchMissingError) Error() string {
	return fmt.Sprintf("afilados not found: %v", e.IDs)
}

// BatchAlreadyFinalError reports afilado ids whose salida is already
// registered.
type BatchAlreadyFinalError struct {
	IDs []int64
}

func (e *BatchAlreadyFinalError) Error() string {
	return fmt.Sprintf("afilados already finalized: %v", e.IDs)
}

// BatchScopeError reports the first afilado outside the caller's scope.
type BatchScopeError struct {
	AfiladoID int64
}

func (e *BatchScopeError) Error() string {
	return fmt.Sprintf("afilado %d outside caller scope", e.AfiladoID)
}
