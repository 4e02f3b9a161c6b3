package handler

import (
	"net/http"
	"strconv"

	"filedock/internal/audit"
	"filedock/internal/auth"
	"filedock/internal/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	dispositionAttachment = "attachment"
	dispositionInline     = "inline"
)

type FileHandler struct {
	files       FileOperations
	auditLogger AuditRecorder
}

func NewFileHandler(files FileOperations, auditLogger AuditRecorder) *FileHandler {
	return &FileHandler{
		files:       files,
		auditLogger: auditLogger,
	}
}

type FileMoveRequest struct {
	FolderID *string `json:"folder_id"`
}

type FileUpdateRequest struct {
	IsPublic    *bool   `json:"is_public"`
	CustomName  *string `json:"custom_name"`
	Description *string `json:"description"`
	FileType    *string `json:"file_type"`
	Tags        *string `json:"tags"`
}

type DownloadURLResponse struct {
	DownloadURL string `json:"download_url"`
}

// Upload accepts a multipart form with the blob in the "file" field and
// metadata in the remaining fields.
func (h *FileHandler) Upload(c echo.Context) error {
	header, err := c.FormFile(formFieldFile)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgMissingUploadFile)
	}

	src, err := header.Open()
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidRequestBody)
	}
	defer src.Close()

	isPublic := false
	if raw := c.FormValue(formFieldIsPublic); raw != "" {
		isPublic, err = strconv.ParseBool(raw)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidIsPublic)
		}
	}

	var folderID *uuid.UUID
	if raw := c.FormValue(formFieldFolderID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidFolderID)
		}
		folderID = &id
	}

	input := service.UploadInput{
		Reader:       src,
		OriginalName: header.Filename,
		Size:         header.Size,
		ContentType:  header.Header.Get(echo.HeaderContentType),
		IsPublic:     isPublic,
		CustomName:   formPtr(c, formFieldCustomName),
		Description:  formPtr(c, formFieldDescription),
		FileType:     formPtr(c, formFieldFileType),
		Tags:         formPtr(c, formFieldTags),
		FolderID:     folderID,
	}

	uploaded, err := h.files.Upload(c.Request().Context(), auth.GetIdentity(c), input)
	if err != nil {
		h.auditLogger.RecordError(c, audit.ResourceTypeFile, nil, audit.ActionUpload, err)
		return RespondWithMappedError(c, err)
	}

	h.auditLogger.Record(c, audit.ResourceTypeFile, &uploaded.ID, audit.ActionUpload, audit.StatusSuccess, map[string]any{
		"original_name": uploaded.OriginalName,
		"size":          uploaded.Size,
		"is_public":     uploaded.IsPublic,
	})

	return c.JSON(http.StatusCreated, newFileResponse(uploaded))
}

func (h *FileHandler) ListFiles(c echo.Context) error {
	page, perPage, err := parsePagination(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	input := service.ListInput{
		Page:    page,
		PerPage: perPage,
		Search:  c.QueryParam(querySearch),
		Tags:    c.QueryParam(queryTags),
	}

	if raw := c.QueryParam(queryFileType); raw != "" {
		input.FileType = &raw
	}
	// A present folder_id scopes the listing; an empty value means
	// root-level files only.
	if params := c.QueryParams(); params.Has(queryFolderID) {
		input.FolderScoped = true
		if raw := params.Get(queryFolderID); raw != "" {
			folderID, err := uuid.Parse(raw)
			if err != nil {
				return respondError(c, http.StatusBadRequest, msgInvalidFolderID)
			}
			input.FolderID = &folderID
		}
	}
	if raw := c.QueryParam(queryIsPublic); raw != "" {
		isPublic, err := strconv.ParseBool(raw)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidIsPublic)
		}
		input.IsPublic = &isPublic
	}

	result, err := h.files.List(c.Request().Context(), auth.GetIdentity(c), input)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newFileListResponse(result))
}

func (h *FileHandler) GetFile(c echo.Context) error {
	fileID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidID)
	}

	f, err := h.files.Get(c.Request().Context(), auth.GetIdentity(c), fileID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newFileResponse(f))
}

// UpdateFile patches metadata and visibility. It is the visibility toggle:
// is_public=true mints a slug on first publish, is_public=false disables the
// public link while keeping the slug for republish.
func (h *FileHandler) UpdateFile(c echo.Context) error {
	fileID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidID)
	}

	var req FileUpdateRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	updated, err := h.files.Update(c.Request().Context(), auth.GetIdentity(c), fileID, service.UpdateInput{
		IsPublic:    req.IsPublic,
		CustomName:  req.CustomName,
		Description: req.Description,
		FileType:    req.FileType,
		Tags:        req.Tags,
	})
	if err != nil {
		h.auditLogger.RecordError(c, audit.ResourceTypeFile, &fileID, audit.ActionUpdate, err)
		return RespondWithMappedError(c, err)
	}

	action := audit.ActionUpdate
	if req.IsPublic != nil {
		action = audit.ActionVisibility
	}
	h.auditLogger.Record(c, audit.ResourceTypeFile, &fileID, action, audit.StatusSuccess, map[string]any{
		"is_public": updated.IsPublic,
	})

	return c.JSON(http.StatusOK, newFileResponse(updated))
}

func (h *FileHandler) MoveFile(c echo.Context) error {
	fileID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidID)
	}

	var req FileMoveRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	folderID, err := parseOptionalUUID(req.FolderID)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidFolderID)
	}

	moved, err := h.files.Move(c.Request().Context(), auth.GetIdentity(c), fileID, folderID)
	if err != nil {
		h.auditLogger.RecordError(c, audit.ResourceTypeFile, &fileID, audit.ActionMove, err)
		return RespondWithMappedError(c, err)
	}

	h.auditLogger.Record(c, audit.ResourceTypeFile, &fileID, audit.ActionMove, audit.StatusSuccess, nil)

	return c.JSON(http.StatusOK, newFileResponse(moved))
}

func (h *FileHandler) DeleteFile(c echo.Context) error {
	fileID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidID)
	}

	if err := h.files.Delete(c.Request().Context(), auth.GetIdentity(c), fileID); err != nil {
		h.auditLogger.RecordError(c, audit.ResourceTypeFile, &fileID, audit.ActionDelete, err)
		return RespondWithMappedError(c, err)
	}

	h.auditLogger.Record(c, audit.ResourceTypeFile, &fileID, audit.ActionDelete, audit.StatusSuccess, nil)

	return respondMessage(c, http.StatusOK, msgFileDeleted)
}

// DownloadFile streams the blob as an attachment.
func (h *FileHandler) DownloadFile(c echo.Context) error {
	return h.streamFile(c, dispositionAttachment, audit.ActionDownload)
}

// ViewFile streams the blob inline for in-browser rendering.
func (h *FileHandler) ViewFile(c echo.Context) error {
	return h.streamFile(c, dispositionInline, audit.ActionDownload)
}

func (h *FileHandler) streamFile(c echo.Context, disposition string, action audit.Action) error {
	fileID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidID)
	}

	f, obj, err := h.files.Download(c.Request().Context(), auth.GetIdentity(c), fileID)
	if err != nil {
		h.auditLogger.RecordError(c, audit.ResourceTypeFile, &fileID, action, err)
		return RespondWithMappedError(c, err)
	}
	defer obj.Body.Close()

	h.auditLogger.Record(c, audit.ResourceTypeFile, &fileID, action, audit.StatusSuccess, map[string]any{
		"disposition": disposition,
	})

	return streamObjectResponse(c, f.OriginalName, contentTypeFor(f, obj.ContentType), obj.Size, disposition, obj)
}

func (h *FileHandler) GetDownloadURL(c echo.Context) error {
	fileID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidID)
	}

	url, err := h.files.DownloadURL(c.Request().Context(), auth.GetIdentity(c), fileID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, DownloadURLResponse{DownloadURL: url})
}

// formPtr returns a pointer to the form value, or nil when the field is
// absent or empty.
func formPtr(c echo.Context, field string) *string {
	if value := c.FormValue(field); value != "" {
		return &value
	}
	return nil
}
