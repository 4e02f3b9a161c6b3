package handler

import (
	"net/http"

	"filedock/internal/audit"
	"filedock/internal/auth"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	accounts    AccountService
	auditLogger AuditRecorder
}

func NewAuthHandler(accounts AccountService, auditLogger AuditRecorder) *AuthHandler {
	return &AuthHandler{
		accounts:    accounts,
		auditLogger: auditLogger,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	result, err := h.accounts.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		h.auditLogger.RecordError(c, audit.ResourceTypeUser, nil, audit.ActionRegister, err)
		return RespondWithMappedError(c, err)
	}

	h.auditLogger.Record(c, audit.ResourceTypeUser, &result.User.ID, audit.ActionRegister, audit.StatusSuccess, map[string]any{
		"email": result.User.Email,
	})

	return c.JSON(http.StatusCreated, newTokenResponse(result))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	result, err := h.accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		h.auditLogger.RecordError(c, audit.ResourceTypeUser, nil, audit.ActionLogin, err)
		return RespondWithMappedError(c, err)
	}

	h.auditLogger.Record(c, audit.ResourceTypeUser, &result.User.ID, audit.ActionLogin, audit.StatusSuccess, nil)

	return c.JSON(http.StatusOK, newTokenResponse(result))
}

func (h *AuthHandler) Me(c echo.Context) error {
	ident := auth.GetIdentity(c)
	if ident == nil {
		return respondError(c, http.StatusUnauthorized, "authentication required")
	}

	u, err := h.accounts.Get(c.Request().Context(), ident, ident.UserID)
	if err != nil {
		return RespondWithMappedError(c, err)
	}

	return c.JSON(http.StatusOK, newUserResponse(u))
}
