package handler

import (
	"errors"
	"net/http"

	apperrors "filedock/pkg/errors"

	"github.com/labstack/echo/v4"
)

// MapToPublicError maps internal errors to public-facing HTTP status codes and
// generic messages. Internal detail never reaches the client through this path.
func MapToPublicError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, apperrors.ErrInvalidCreds):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, apperrors.ErrEmailExists):
		return http.StatusConflict, "email already exists"
	case errors.Is(err, apperrors.ErrFolderNotEmpty):
		return http.StatusConflict, "folder is not empty"
	case errors.Is(err, apperrors.ErrSlugTaken), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, "resource conflict"
	case errors.Is(err, apperrors.ErrCycleDetected):
		return http.StatusBadRequest, "move would create a cycle"
	case errors.Is(err, apperrors.ErrInvalidName), errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, apperrors.ErrSlugExhausted):
		return http.StatusServiceUnavailable, "could not allocate a public link, retry later"
	case errors.Is(err, apperrors.ErrStorageFailure):
		return http.StatusBadGateway, "storage backend unavailable"
	case errors.Is(err, apperrors.ErrPartialDeletion):
		return http.StatusInternalServerError, "deletion partially failed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondWithMappedError maps err and responds. Client-class errors carry the
// AppError message when one is attached; server-class errors stay generic.
func RespondWithMappedError(c echo.Context, err error) error {
	status, msg := MapToPublicError(err)

	var appErr *apperrors.AppError
	if status < http.StatusInternalServerError && errors.As(err, &appErr) && appErr.Message != "" {
		msg = appErr.Message
	}

	return respondError(c, status, msg)
}
