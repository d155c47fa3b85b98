package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArielVlevin/maintainer-backend/internal/application/services"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
)

// CalendarHandler serves calendar views of maintenance tasks
type CalendarHandler struct {
	calendarService *services.CalendarService
	logger          *logger.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService *services.CalendarService, logger *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		logger:          logger,
	}
}

// GetUserCalendar returns all of the authenticated user's tasks as calendar events
func (h *CalendarHandler) GetUserCalendar(c echo.Context) error {
	events, err := h.calendarService.UserEvents(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		h.logger.Errorw("User calendar failed", "error", err)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, events)
}

// GetProductCalendar returns one product's tasks as calendar events
func (h *CalendarHandler) GetProductCalendar(c echo.Context) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	events, err := h.calendarService.ProductEvents(c.Request().Context(), getUserIDFromContext(c), productID)
	if err != nil {
		h.logger.Errorw("Product calendar failed", "error", err, "product_id", productID)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, events)
}
