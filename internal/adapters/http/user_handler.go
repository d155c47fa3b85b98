package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArielVlevin/maintainer-backend/internal/application/services"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

// UserHandler handles user profile requests
type UserHandler struct {
	userService *services.UserService
	actionLog   *services.ActionLogService
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, actionLog *services.ActionLogService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		actionLog:   actionLog,
		logger:      logger,
	}
}

// GetCurrentUser returns the authenticated user's profile
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateCurrentUser updates the authenticated user's profile
func (h *UserHandler) UpdateCurrentUser(c echo.Context) error {
	var req ports.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateName(c.Request().Context(), getUserIDFromContext(c), req.Name)
	if err != nil {
		h.logger.Errorw("Update user failed", "error", err)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteCurrentUser deletes the authenticated user's account
func (h *UserHandler) DeleteCurrentUser(c echo.Context) error {
	if err := h.userService.DeleteUser(c.Request().Context(), getUserIDFromContext(c)); err != nil {
		h.logger.Errorw("Delete user failed", "error", err)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Account deleted successfully"})
}

// ListMyActions returns the authenticated user's recent audit trail
func (h *UserHandler) ListMyActions(c echo.Context) error {
	limit, _, err := parsePagination(c)
	if err != nil {
		return err
	}

	logs, err := h.actionLog.ListUserActions(c.Request().Context(), getUserIDFromContext(c), limit)
	if err != nil {
		h.logger.Errorw("List actions failed", "error", err)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, logs)
}
