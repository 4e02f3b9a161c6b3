package handler

import (
	"github.com/labstack/echo/v4"

	"filedock/internal/audit"
)

type PublicHandler struct {
	files       PublicFileResolver
	auditLogger AuditRecorder
}

func NewPublicHandler(files PublicFileResolver, auditLogger AuditRecorder) *PublicHandler {
	return &PublicHandler{
		files:       files,
		auditLogger: auditLogger,
	}
}

// GetBySlug serves a public file inline by its slug, with no authentication.
// Private files and unknown slugs are indistinguishable to the caller.
func (h *PublicHandler) GetBySlug(c echo.Context) error {
	slug := c.Param(paramSlug)

	f, obj, err := h.files.OpenBySlug(c.Request().Context(), slug)
	if err != nil {
		return RespondWithMappedError(c, err)
	}
	defer obj.Body.Close()

	h.auditLogger.Record(c, audit.ResourceTypeFile, &f.ID, audit.ActionDownload, audit.StatusSuccess, map[string]any{
		"slug":   slug,
		"public": true,
	})

	return streamObjectResponse(c, f.OriginalName, contentTypeFor(f, obj.ContentType), obj.Size, dispositionInline, obj)
}
