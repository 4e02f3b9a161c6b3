package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"filedock/internal/audit"
	"filedock/internal/auth"
	apperrors "filedock/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type FolderHandler struct {
	folders     FolderOperations
	auditLogger AuditRecorder
}

func NewFolderHandler(folders FolderOperations, auditLogger AuditRecorder) *FolderHandler {
	return &FolderHandler{
		folders:     folders,
		auditLogger: auditLogger,
	}
}

type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// UpdateFolderRequest renames and/or moves a folder. ParentID is raw JSON
// so that an explicit null (move to root) can be told apart from an absent
// field (no move).
type UpdateFolderRequest struct {
	Name     *string         `json:"name"`
	ParentID json.RawMessage `json:"parent_id"`
}

func (h *FolderHandler) CreateFolder(c echo.Context) error {
	var req CreateFolderRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	parentID, err := parseOptionalUUID(req.ParentID)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidFolderID)
	}

	created, err := h.folders.Create(c.Request().Context(), auth.GetIdentity(c), req.Name, parentID)
	if err != nil {
		h.auditLogger.RecordError(c, audit.ResourceTypeFolder, nil, audit.ActionCreate, err)
		return RespondWithMappedError(c, err)
	}

	h.auditLogger.Record(c, audit.ResourceTypeFolder, &created.ID, audit.ActionCreate, audit.StatusSuccess, map[string]any{
		"name": created.Name,
	})

	return c.JSON(http.StatusCreated, newFolderResponse(created))
}

func (h *FolderHandler) GetFolder(c echo.Context) error {
	folderID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidFolderID)
	}

	f, err := h.folders.Get(c.Request().Context(), auth.GetIdentity(c), folderID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newFolderResponse(f))
}

// GetContents lists a folder's subfolders and files. Omitting the folder_id
// query parameter lists the root level.
func (h *FolderHandler) GetContents(c echo.Context) error {
	var folderID *uuid.UUID
	if raw := c.QueryParam(queryFolderID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidFolderID)
		}
		folderID = &id
	}

	contents, err := h.folders.Contents(c.Request().Context(), auth.GetIdentity(c), folderID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newFolderContentsResponse(contents))
}

func (h *FolderHandler) GetBreadcrumbs(c echo.Context) error {
	folderID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidFolderID)
	}

	crumbs, err := h.folders.Breadcrumbs(c.Request().Context(), auth.GetIdentity(c), folderID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	resp := make([]BreadcrumbResponse, 0, len(crumbs))
	for _, crumb := range crumbs {
		resp = append(resp, BreadcrumbResponse{ID: crumb.ID, Name: crumb.Name})
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *FolderHandler) GetTree(c echo.Context) error {
	tree, err := h.folders.Tree(c.Request().Context(), auth.GetIdentity(c))
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newTreeResponse(tree))
}

func (h *FolderHandler) UpdateFolder(c echo.Context) error {
	folderID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidFolderID)
	}

	var req UpdateFolderRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	ident := auth.GetIdentity(c)
	ctx := c.Request().Context()

	updated, err := h.folders.Get(ctx, ident, folderID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	if req.Name != nil {
		updated, err = h.folders.Rename(ctx, ident, folderID, *req.Name)
		if err != nil {
			h.auditLogger.RecordError(c, audit.ResourceTypeFolder, &folderID, audit.ActionRename, err)
			return RespondWithMappedError(c, err)
		}
		h.auditLogger.Record(c, audit.ResourceTypeFolder, &folderID, audit.ActionRename, audit.StatusSuccess, map[string]any{
			"name": updated.Name,
		})
	}

	if len(req.ParentID) > 0 {
		newParent, err := parseNullableUUID(req.ParentID)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidFolderID)
		}

		updated, err = h.folders.Move(ctx, ident, folderID, newParent)
		if err != nil {
			h.auditLogger.RecordError(c, audit.ResourceTypeFolder, &folderID, audit.ActionMove, err)
			return RespondWithMappedError(c, err)
		}
		h.auditLogger.Record(c, audit.ResourceTypeFolder, &folderID, audit.ActionMove, audit.StatusSuccess, nil)
	}

	return c.JSON(http.StatusOK, newFolderResponse(updated))
}

// DeleteFolder deletes a folder, recursively by default. A partial failure
// still reports what was deleted and what was left behind.
func (h *FolderHandler) DeleteFolder(c echo.Context) error {
	folderID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidFolderID)
	}

	recursive := true
	if raw := c.QueryParam(queryRecursive); raw != "" {
		recursive, err = strconv.ParseBool(raw)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidRecursive)
		}
	}

	report, err := h.folders.Delete(c.Request().Context(), auth.GetIdentity(c), folderID, recursive)
	if err != nil {
		if errors.Is(err, apperrors.ErrPartialDeletion) && report != nil {
			h.auditLogger.Record(c, audit.ResourceTypeFolder, &folderID, audit.ActionDelete, audit.StatusFailure, map[string]any{
				"files_deleted":   report.FilesDeleted,
				"folders_deleted": report.FoldersDeleted,
				"files_failed":    len(report.FailedFiles),
			})
			return c.JSON(http.StatusMultiStatus, newDeleteReportResponse(err.Error(), report))
		}

		h.auditLogger.RecordError(c, audit.ResourceTypeFolder, &folderID, audit.ActionDelete, err)
		return RespondWithMappedError(c, err)
	}

	h.auditLogger.Record(c, audit.ResourceTypeFolder, &folderID, audit.ActionDelete, audit.StatusSuccess, map[string]any{
		"files_deleted":   report.FilesDeleted,
		"folders_deleted": report.FoldersDeleted,
		"recursive":       recursive,
	})

	return c.JSON(http.StatusOK, newDeleteReportResponse(msgFolderDeleted, report))
}

// parseOptionalUUID treats nil and empty string as absent.
func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseNullableUUID parses a raw JSON value that is either null or a UUID
// string. JSON null means "root level".
func parseNullableUUID(raw json.RawMessage) (*uuid.UUID, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
