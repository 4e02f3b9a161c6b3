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

type UserHandler struct {
	users       UserAdminService
	auditLogger AuditRecorder
}

func NewUserHandler(users UserAdminService, auditLogger AuditRecorder) *UserHandler {
	return &UserHandler{
		users:       users,
		auditLogger: auditLogger,
	}
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"is_admin"`
	IsActive *bool   `json:"is_active"`
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	page, perPage, err := parsePagination(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	result, err := h.users.List(c.Request().Context(), auth.GetIdentity(c), page, perPage)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	resp := UserListResponse{
		Users:   make([]UserResponse, 0, len(result.Items)),
		Total:   result.Total,
		Page:    result.Page,
		PerPage: result.PerPage,
	}
	for _, u := range result.Items {
		resp.Users = append(resp.Users, newUserResponse(u))
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	u, err := h.users.Create(c.Request().Context(), auth.GetIdentity(c), req.Email, req.Password, req.IsAdmin)
	if err != nil {
		h.auditLogger.RecordError(c, audit.ResourceTypeUser, nil, audit.ActionCreate, err)
		return RespondWithMappedError(c, err)
	}

	h.auditLogger.Record(c, audit.ResourceTypeUser, &u.ID, audit.ActionCreate, audit.StatusSuccess, map[string]any{
		"email":    u.Email,
		"is_admin": u.IsAdmin,
	})

	return c.JSON(http.StatusCreated, newUserResponse(u))
}

func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidUserID)
	}

	u, err := h.users.Get(c.Request().Context(), auth.GetIdentity(c), userID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newUserResponse(u))
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidUserID)
	}

	var req UpdateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	u, err := h.users.Update(c.Request().Context(), auth.GetIdentity(c), userID, service.AdminPatch{
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.auditLogger.RecordError(c, audit.ResourceTypeUser, &userID, audit.ActionUpdate, err)
		return RespondWithMappedError(c, err)
	}

	h.auditLogger.Record(c, audit.ResourceTypeUser, &userID, audit.ActionUpdate, audit.StatusSuccess, nil)

	return c.JSON(http.StatusOK, newUserResponse(u))
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidUserID)
	}

	if err := h.users.Delete(c.Request().Context(), auth.GetIdentity(c), userID); err != nil {
		h.auditLogger.RecordError(c, audit.ResourceTypeUser, &userID, audit.ActionDelete, err)
		return RespondWithMappedError(c, err)
	}

	h.auditLogger.Record(c, audit.ResourceTypeUser, &userID, audit.ActionDelete, audit.StatusSuccess, nil)

	return respondMessage(c, http.StatusOK, msgUserDeleted)
}

// parsePagination reads the page/per_page query parameters, leaving zero
// values for the service layer to default and clamp.
func parsePagination(c echo.Context) (page, perPage int, err error) {
	if raw := c.QueryParam(queryPage); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, errInvalidPage
		}
	}

	if raw := c.QueryParam(queryPerPage); raw != "" {
		perPage, err = strconv.Atoi(raw)
		if err != nil || perPage < 1 {
			return 0, 0, errInvalidPerPage
		}
	}

	return page, perPage, nil
}
