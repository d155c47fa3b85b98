package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ArielVlevin/maintainer-backend/internal/application/services"
	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// CreateTask handles task creation under a product
func (h *TaskHandler) CreateTask(c echo.Context) error {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), getUserIDFromContext(c), productID, req)
	if err != nil {
		h.logger.Errorw("Create task failed", "error", err, "product_id", productID)
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask handles getting a task by ID
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// ListTasks handles listing the caller's tasks with filters and pagination
func (h *TaskHandler) ListTasks(c echo.Context) error {
	limit, offset, err := parsePagination(c)
	if err != nil {
		return err
	}

	filter := ports.TaskFilter{Limit: limit, Offset: offset}

	if status := c.QueryParam("status"); status != "" {
		taskStatus := entities.TaskStatus(status)
		if !taskStatus.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status parameter")
		}
		filter.Status = &taskStatus
	}
	if productIDStr := c.QueryParam("product_id"); productIDStr != "" {
		productID, err := uuid.Parse(productIDStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid product_id parameter")
		}
		filter.ProductID = &productID
	}
	if search := c.QueryParam("search"); search != "" {
		filter.Search = &search
	}

	tasks, total, err := h.taskService.ListTasks(c.Request().Context(), getUserIDFromContext(c), filter)
	if err != nil {
		h.logger.Errorw("List tasks failed", "error", err)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, ports.PaginatedResponse[*entities.Task]{
		Data:   tasks,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// UpdateTask handles updating a task
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), getUserIDFromContext(c), id, req)
	if err != nil {
		h.logger.Errorw("Update task failed", "error", err, "task_id", id)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// CompleteTask handles marking a task as completed
func (h *TaskHandler) CompleteTask(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	task, err := h.taskService.CompleteTask(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		h.logger.Errorw("Complete task failed", "error", err, "task_id", id)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// PostponeTask handles shifting a task's due date forward
func (h *TaskHandler) PostponeTask(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.PostponeTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.PostponeTask(c.Request().Context(), getUserIDFromContext(c), id, req.Days)
	if err != nil {
		h.logger.Errorw("Postpone task failed", "error", err, "task_id", id)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask handles deleting a task
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), getUserIDFromContext(c), id); err != nil {
		h.logger.Errorw("Delete task failed", "error", err, "task_id", id)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Task deleted successfully"})
}
