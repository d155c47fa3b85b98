package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

// TaskService handles the maintenance-task lifecycle: create, complete,
// postpone, update and delete, keeping the persisted status in sync with the
// status rule after every date-bearing change.
type TaskService struct {
	taskRepo    ports.TaskRepository
	productRepo ports.ProductRepository
	products    *ProductService
	actionLog   ports.ActionLogger
	clock       ports.Clock
	logger      *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo ports.TaskRepository,
	productRepo ports.ProductRepository,
	products *ProductService,
	actionLog ports.ActionLogger,
	clock ports.Clock,
	logger *logger.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		productRepo: productRepo,
		products:    products,
		actionLog:   actionLog,
		clock:       clock,
		logger:      logger,
	}
}

// CreateTask creates a new maintenance task attached to a product. For a
// recurring task the first window start comes from the explicit first due
// date when provided, otherwise it is derived from the recurrence
// configuration; a one-off task takes its due date directly.
func (s *TaskService) CreateTask(ctx context.Context, userID, productID uuid.UUID, req ports.CreateTaskRequest) (*entities.Task, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}

	if req.TaskName == "" {
		return nil, fmt.Errorf("%w: task name is required", entities.ErrValidation)
	}
	if req.IsRecurring == nil {
		return nil, fmt.Errorf("%w: is_recurring must be set explicitly", entities.ErrValidation)
	}

	now := s.clock.Now()
	task := &entities.Task{
		ID:                    uuid.New(),
		ProductID:             product.ID,
		UserID:                userID,
		TaskName:              req.TaskName,
		Description:           req.Description,
		IsRecurring:           *req.IsRecurring,
		Frequency:             req.Frequency,
		MaintenanceWindowDays: req.MaintenanceWindowDays,
		LastMaintenance:       req.LastMaintenance,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if task.IsRecurring {
		if err := task.ValidateRecurrence(); err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrValidation, err)
		}
		window, err := s.initialWindow(task, req)
		if err != nil {
			return nil, err
		}
		task.MaintenanceWindow = window
		task.NextMaintenance = &window.StartDate
	} else {
		if err := task.ValidateRecurrence(); err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrValidation, err)
		}
		task.NextMaintenance = req.FirstMaintenanceDate
	}

	task.Status = entities.DetermineStatus(task, now)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.productRepo.UpdateTaskRefs(ctx, product.ID, ports.TaskRefAdd, task.ID); err != nil {
		return nil, fmt.Errorf("failed to attach task to product: %w", err)
	}

	if err := s.products.RecomputeStatus(ctx, product.ID); err != nil {
		s.logger.Errorw("Failed to recompute product status after task create",
			"error", err, "product_id", product.ID)
	}

	s.actionLog.LogAction(ctx, userID, ActionCreate, EntityTask, task.ID,
		fmt.Sprintf("Task %q was created", task.TaskName))

	s.logger.Infow("Task created", "task_id", task.ID, "product_id", product.ID, "status", task.Status)

	return task, nil
}

// initialWindow resolves the first maintenance window of a recurring task.
// The window start anchors on the explicit first due date when given, else on
// the last maintenance date (or now) plus the frequency.
func (s *TaskService) initialWindow(task *entities.Task, req ports.CreateTaskRequest) (*entities.MaintenanceWindow, error) {
	windowDays := 0
	if task.MaintenanceWindowDays != nil {
		windowDays = *task.MaintenanceWindowDays
	}

	if req.FirstMaintenanceDate != nil {
		start := *req.FirstMaintenanceDate
		return &entities.MaintenanceWindow{
			StartDate: start,
			EndDate:   start.AddDate(0, 0, windowDays),
		}, nil
	}

	base := s.clock.Now()
	if req.LastMaintenance != nil {
		base = *req.LastMaintenance
	}
	start := base.AddDate(0, 0, *task.Frequency)
	return &entities.MaintenanceWindow{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, windowDays),
	}, nil
}

// GetTask retrieves a task by ID, enforcing ownership.
func (s *TaskService) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*entities.Task, error) {
	return s.getOwnedTask(ctx, userID, taskID)
}

// ListTasks retrieves tasks with filtering and pagination, scoped to the
// requesting user.
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID, filter ports.TaskFilter) ([]*entities.Task, int, error) {
	filter.UserID = &userID
	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// CompleteTask marks a task as completed. A recurring task is immediately
// pre-armed for its next cycle: the next window is computed and the next
// maintenance date set even while the task stays marked completed. A one-off
// task has no future occurrence, so its next maintenance date is cleared.
func (s *TaskService) CompleteTask(ctx context.Context, userID, taskID uuid.UUID) (*entities.Task, error) {
	task, err := s.getOwnedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	task.Status = entities.TaskStatusCompleted
	task.LastMaintenance = &now

	if task.IsRecurring {
		if window := entities.ComputeMaintenanceWindow(task, now); window != nil {
			task.MaintenanceWindow = window
			task.NextMaintenance = &window.StartDate
		} else if task.Frequency != nil {
			// No window width configured: fall back to a plain next date.
			next := now.AddDate(0, 0, *task.Frequency)
			task.NextMaintenance = &next
			task.MaintenanceWindow = nil
		}
	} else {
		task.NextMaintenance = nil
		task.MaintenanceWindow = nil
	}

	task.UpdatedAt = now
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	if err := s.products.RecomputeStatus(ctx, task.ProductID); err != nil {
		s.logger.Errorw("Failed to recompute product status after task completion",
			"error", err, "product_id", task.ProductID)
	}

	s.actionLog.LogAction(ctx, userID, ActionComplete, EntityTask, task.ID,
		fmt.Sprintf("Task %q was completed", task.TaskName))

	s.logger.Infow("Task completed", "task_id", task.ID, "next_maintenance", task.NextMaintenance)

	return task, nil
}

// PostponeTask shifts a task's next maintenance date forward by the given
// number of days. The shift is purely additive: the window and status are
// untouched, the next reconciliation tick re-derives status from the shifted
// date.
func (s *TaskService) PostponeTask(ctx context.Context, userID, taskID uuid.UUID, days int) (*entities.Task, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: postpone days must be at least 1", entities.ErrValidation)
	}

	task, err := s.getOwnedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if task.NextMaintenance == nil {
		return nil, fmt.Errorf("%w: task has no next maintenance date to postpone", entities.ErrValidation)
	}

	next := task.NextMaintenance.AddDate(0, 0, days)
	task.NextMaintenance = &next
	task.UpdatedAt = s.clock.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to postpone task: %w", err)
	}

	if err := s.products.RecomputeStatus(ctx, task.ProductID); err != nil {
		s.logger.Errorw("Failed to recompute product status after task postpone",
			"error", err, "product_id", task.ProductID)
	}

	s.actionLog.LogAction(ctx, userID, ActionPostpone, EntityTask, task.ID,
		fmt.Sprintf("Task %q was postponed by %d days", task.TaskName, days))

	return task, nil
}

// UpdateTask merges the patch into the task, re-validates the recurrence
// invariants and re-derives status from the merged dates before saving.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.getOwnedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if req.TaskName != nil {
		if *req.TaskName == "" {
			return nil, fmt.Errorf("%w: task name must not be empty", entities.ErrValidation)
		}
		task.TaskName = *req.TaskName
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Frequency != nil {
		task.Frequency = req.Frequency
	}
	if req.MaintenanceWindowDays != nil {
		task.MaintenanceWindowDays = req.MaintenanceWindowDays
	}
	if req.NextMaintenance != nil {
		task.NextMaintenance = req.NextMaintenance
	}

	if err := task.ValidateRecurrence(); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}

	now := s.clock.Now()
	task.Status = entities.DetermineStatus(task, now)
	task.UpdatedAt = now

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if err := s.products.RecomputeStatus(ctx, task.ProductID); err != nil {
		s.logger.Errorw("Failed to recompute product status after task update",
			"error", err, "product_id", task.ProductID)
	}

	s.actionLog.LogAction(ctx, userID, ActionUpdate, EntityTask, task.ID,
		fmt.Sprintf("Task %q was updated", task.TaskName))

	return task, nil
}

// DeleteTask deletes a task and removes its reference from every product
// that still points at it.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.getOwnedTask(ctx, userID, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if err := s.taskRepo.PullTaskFromAllProducts(ctx, taskID); err != nil {
		return fmt.Errorf("failed to detach task from products: %w", err)
	}

	if err := s.products.RecomputeStatus(ctx, task.ProductID); err != nil {
		s.logger.Errorw("Failed to recompute product status after task delete",
			"error", err, "product_id", task.ProductID)
	}

	s.actionLog.LogAction(ctx, userID, ActionDelete, EntityTask, taskID,
		fmt.Sprintf("Task %q was deleted", task.TaskName))

	s.logger.Infow("Task deleted", "task_id", taskID)

	return nil
}

// getOwnedTask loads a task and validates that the requester owns it.
func (s *TaskService) getOwnedTask(ctx context.Context, userID, taskID uuid.UUID) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}
	if task.UserID != userID {
		return nil, entities.ErrUnauthorized
	}
	return task, nil
}
