package errors

import (
	"errors"
	"fmt"
)

// Domain errors - Sentinel errors for use with errors.Is()
var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidName     = errors.New("invalid name")
	ErrConflict        = errors.New("resource already exists")
	ErrCycleDetected   = errors.New("operation would create a cycle")
	ErrFolderNotEmpty  = errors.New("folder is not empty")
	ErrSlugExhausted   = errors.New("slug candidates exhausted")
	ErrSlugTaken       = errors.New("slug already taken")
	ErrStorageFailure  = errors.New("storage backend failure")
	ErrEmailExists     = errors.New("email already exists")
	ErrInvalidCreds    = errors.New("invalid credentials")
	ErrInternalServer  = errors.New("internal server error")
	ErrPartialDeletion = errors.New("deletion partially failed")
)

// AppError carries a stable machine-readable code alongside the
// human-readable message. The wrapped sentinel drives errors.Is dispatch.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructors
func NotFound(msg string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: msg, Err: ErrNotFound}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Err: ErrUnauthorized}
}

func Forbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Err: ErrForbidden}
}

func InvalidInput(msg string) *AppError {
	return &AppError{Code: "INVALID_INPUT", Message: msg, Err: ErrInvalidInput}
}

func InvalidName(msg string) *AppError {
	return &AppError{Code: "INVALID_NAME", Message: msg, Err: ErrInvalidName}
}

func Conflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Err: ErrConflict}
}

func CycleDetected(msg string) *AppError {
	return &AppError{Code: "CYCLE_DETECTED", Message: msg, Err: ErrCycleDetected}
}

func FolderNotEmpty(msg string) *AppError {
	return &AppError{Code: "FOLDER_NOT_EMPTY", Message: msg, Err: ErrFolderNotEmpty}
}

func SlugExhausted(msg string) *AppError {
	return &AppError{Code: "SLUG_EXHAUSTED", Message: msg, Err: ErrSlugExhausted}
}

func StorageFailure(msg string, err error) *AppError {
	return &AppError{Code: "STORAGE_FAILURE", Message: msg, Err: errors.Join(ErrStorageFailure, err)}
}

func PartialDeletion(msg string) *AppError {
	return &AppError{Code: "PARTIAL_DELETION", Message: msg, Err: ErrPartialDeletion}
}

func InvalidCredentials() *AppError {
	return &AppError{Code: "INVALID_CREDENTIALS", Message: "invalid email or password", Err: ErrInvalidCreds}
}

func InternalServer(msg string, err error) *AppError {
	return &AppError{Code: "INTERNAL_SERVER_ERROR", Message: msg, Err: err}
}
