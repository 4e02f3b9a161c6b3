package handler

import (
	"net/http"
	"strconv"

	"filedock/internal/audit"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const maxAuditLimit = 500

type AuditHandler struct {
	audits AuditQuerier
}

func NewAuditHandler(audits AuditQuerier) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// ListEvents returns recorded audit events, newest first, narrowed by
// the optional query filters.
func (h *AuditHandler) ListEvents(c echo.Context) error {
	var filter audit.QueryFilter

	if raw := c.QueryParam(queryActorID); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidActorID)
		}
		filter.ActorID = &actorID
	}
	if raw := c.QueryParam(queryResourceID); raw != "" {
		resourceID, err := uuid.Parse(raw)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidResourceID)
		}
		filter.ResourceID = &resourceID
	}
	if raw := c.QueryParam(queryResourceType); raw != "" {
		resourceType := audit.ResourceType(raw)
		filter.ResourceType = &resourceType
	}
	if raw := c.QueryParam(queryAction); raw != "" {
		action := audit.Action(raw)
		filter.Action = &action
	}
	if raw := c.QueryParam(queryStatus); raw != "" {
		status := audit.Status(raw)
		filter.Status = &status
	}
	if raw := c.QueryParam(queryLimit); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxAuditLimit {
			return respondError(c, http.StatusBadRequest, msgInvalidLimit)
		}
		filter.Limit = limit
	}
	if raw := c.QueryParam(queryOffset); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return respondError(c, http.StatusBadRequest, msgInvalidOffset)
		}
		filter.Offset = offset
	}

	events, err := h.audits.Query(c.Request().Context(), filter)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newAuditEventListResponse(events))
}
