package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"filedock/internal/domain/file"
	"filedock/internal/storage/s3"

	"github.com/labstack/echo/v4"
)

const defaultStreamContentType = "application/octet-stream"

// streamObjectResponse streams a blob back to the client with the original
// filename in the Content-Disposition header.
func streamObjectResponse(c echo.Context, filename, contentType string, size int64, disposition string, obj *s3.Object) error {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("%s; filename=%q", disposition, sanitizeFilename(filename)))
	if size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(size, 10))
	}

	return c.Stream(http.StatusOK, contentType, obj.Body)
}

// contentTypeFor prefers the content type recorded at upload over what the
// blob store reports.
func contentTypeFor(f *file.File, storedType string) string {
	if f.ContentType != nil && *f.ContentType != "" {
		return *f.ContentType
	}
	if storedType != "" {
		return storedType
	}
	return defaultStreamContentType
}

// sanitizeFilename strips characters that would break the quoted
// Content-Disposition filename.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\"", "")
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\n", "")
	return name
}
