package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "filedock/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestMapToPublicError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", apperrors.NotFound("file not found"), http.StatusNotFound},
		{"unauthorized", apperrors.Unauthorized("login required"), http.StatusUnauthorized},
		{"invalid credentials", apperrors.InvalidCredentials(), http.StatusUnauthorized},
		{"forbidden", apperrors.Forbidden("not yours"), http.StatusForbidden},
		{"conflict", apperrors.Conflict("name taken"), http.StatusConflict},
		{"email exists", &apperrors.AppError{Message: "dup", Err: apperrors.ErrEmailExists}, http.StatusConflict},
		{"folder not empty", apperrors.FolderNotEmpty("has children"), http.StatusConflict},
		{"cycle", apperrors.CycleDetected("would loop"), http.StatusBadRequest},
		{"invalid name", apperrors.InvalidName("bad name"), http.StatusBadRequest},
		{"invalid input", apperrors.InvalidInput("bad field"), http.StatusBadRequest},
		{"slug exhausted", apperrors.SlugExhausted("no slug"), http.StatusServiceUnavailable},
		{"storage failure", apperrors.StorageFailure("s3 down", errors.New("dial tcp")), http.StatusBadGateway},
		{"partial deletion", apperrors.PartialDeletion("2 of 5 files"), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("context: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := MapToPublicError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestMapToPublicErrorNeverLeaksInternalDetail(t *testing.T) {
	internal := errors.New("pgx: connection refused host=10.0.0.3")

	_, msg := MapToPublicError(internal)
	assert.Equal(t, "internal server error", msg)
}
