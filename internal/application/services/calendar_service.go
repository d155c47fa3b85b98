package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

// CalendarService projects maintenance tasks into calendar events, either
// across everything a user owns or scoped to a single product.
type CalendarService struct {
	taskRepo    ports.TaskRepository
	productRepo ports.ProductRepository
	logger      *logger.Logger
}

// NewCalendarService creates a new calendar service
func NewCalendarService(taskRepo ports.TaskRepository, productRepo ports.ProductRepository, logger *logger.Logger) *CalendarService {
	return &CalendarService{
		taskRepo:    taskRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// UserEvents returns all of a user's tasks as calendar events, with each
// event carrying its product's name.
func (s *CalendarService) UserEvents(ctx context.Context, userID uuid.UUID) ([]ports.CalendarEvent, error) {
	tasks, err := s.taskRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user tasks: %w", err)
	}

	// Resolve each referenced product once.
	names := make(map[uuid.UUID]string)
	for _, task := range tasks {
		if _, ok := names[task.ProductID]; ok {
			continue
		}
		product, err := s.productRepo.GetByID(ctx, task.ProductID)
		if err != nil {
			s.logger.Warnw("Calendar task references missing product",
				"task_id", task.ID, "product_id", task.ProductID, "error", err)
			names[task.ProductID] = "Unknown product"
			continue
		}
		names[task.ProductID] = product.Name
	}

	events := make([]ports.CalendarEvent, len(tasks))
	for i, task := range tasks {
		events[i] = toCalendarEvent(task, names[task.ProductID])
	}

	return events, nil
}

// ProductEvents returns a single product's tasks as calendar events. The
// product must belong to the requesting user.
func (s *CalendarService) ProductEvents(ctx context.Context, userID, productID uuid.UUID) ([]ports.CalendarEvent, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	if product.UserID != userID {
		return nil, entities.ErrUnauthorized
	}

	tasks, err := s.taskRepo.GetByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product tasks: %w", err)
	}

	events := make([]ports.CalendarEvent, len(tasks))
	for i, task := range tasks {
		events[i] = toCalendarEvent(task, product.Name)
	}

	return events, nil
}

func toCalendarEvent(task *entities.Task, productName string) ports.CalendarEvent {
	return ports.CalendarEvent{
		ID:          task.ID,
		Title:       task.TaskName,
		Description: task.Description,
		Start:       task.NextMaintenance,
		End:         task.NextMaintenance,
		Product: ports.EventProduct{
			ID:   task.ProductID,
			Name: productName,
		},
	}
}
