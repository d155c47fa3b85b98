package services

import (
	"context"
	"time"

	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

// NotificationService is the daily reminder sweep. For every task with a
// scheduled next maintenance date it walks the owning product's
// notification offsets (days before the due date) and fires a reminder on
// each offset day.
//
// A reminder fires only when today lands exactly on the offset date, so each
// configured offset produces at most one reminder per cycle rather than
// re-firing on every run up to the due date.
type NotificationService struct {
	taskRepo    ports.TaskRepository
	productRepo ports.ProductRepository
	userRepo    ports.UserRepository
	notifier    ports.Notifier
	clock       ports.Clock
	logger      *logger.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	taskRepo ports.TaskRepository,
	productRepo ports.ProductRepository,
	userRepo ports.UserRepository,
	notifier ports.Notifier,
	clock ports.Clock,
	logger *logger.Logger,
) *NotificationService {
	return &NotificationService{
		taskRepo:    taskRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		clock:       clock,
		logger:      logger,
	}
}

// Run executes one notification sweep. Per-task failures are logged and the
// sweep continues; nothing is raised past this boundary.
func (s *NotificationService) Run(ctx context.Context) {
	tasks, err := s.taskRepo.GetWithUpcomingMaintenance(ctx)
	if err != nil {
		s.logger.Errorw("Notification sweep failed to load tasks", "error", err)
		return
	}

	today := s.clock.Now()
	sent := 0

	for _, task := range tasks {
		if task.NextMaintenance == nil {
			continue
		}

		product, err := s.productRepo.GetByID(ctx, task.ProductID)
		if err != nil {
			s.logger.Warnw("Skipping reminder for task with dangling product reference",
				"task_id", task.ID, "product_id", task.ProductID, "error", err)
			continue
		}

		user, err := s.userRepo.GetByID(ctx, task.UserID)
		if err != nil {
			s.logger.Warnw("Skipping reminder for task with dangling user reference",
				"task_id", task.ID, "user_id", task.UserID, "error", err)
			continue
		}

		for _, daysBefore := range product.Preferences() {
			notifyDate := task.NextMaintenance.AddDate(0, 0, -daysBefore)
			if !sameDay(today, notifyDate) {
				continue
			}
			if err := s.notifier.Notify(ctx, user, product, task); err != nil {
				s.logger.Errorw("Failed to send maintenance reminder",
					"error", err, "task_id", task.ID, "days_before", daysBefore)
				continue
			}
			sent++
		}
	}

	s.logger.Infow("Notification sweep finished", "tasks", len(tasks), "reminders", sent)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
