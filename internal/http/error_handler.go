package http

import (
	"errors"
	"fmt"
	"net/http"

	"filedock/internal/http/handler"
	apperrors "filedock/pkg/errors"

	"github.com/labstack/echo/v4"
)

// CustomHTTPErrorHandler handles errors that escape handlers and middleware.
// It maps sentinel errors to HTTP status codes, sanitizes internal errors,
// and logs with request context.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var code int
	var message string

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	} else {
		code, message = handler.MapToPublicError(err)

		var appErr *apperrors.AppError
		if code < http.StatusInternalServerError && errors.As(err, &appErr) && appErr.Message != "" {
			message = appErr.Message
		}
	}

	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = "unknown"
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error("internal_server_error",
			"request_id", requestID,
			"status", code,
			"error", err.Error())
		// Never expose internal detail to clients.
		message = "internal server error"
	} else {
		c.Logger().Warn("client_error",
			"request_id", requestID,
			"status", code,
			"error", err.Error())
	}

	if err := c.JSON(code, map[string]interface{}{
		"error":      message,
		"request_id": requestID,
	}); err != nil {
		c.Logger().Error(err)
	}
}
