package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

// ReconcileService is the periodic reconciliation job. Each tick runs two
// sweeps in sequence: first stale completed recurring tasks are demoted back
// to healthy after a cooldown, then every active task's status is re-derived
// from the current time, persisting the change and notifying the owner when
// it differs.
//
// Both sweeps are unattended batch jobs: every per-task failure is logged
// and the sweep moves on to the remaining tasks.
type ReconcileService struct {
	taskRepo    ports.TaskRepository
	productRepo ports.ProductRepository
	userRepo    ports.UserRepository
	products    *ProductService
	notifier    ports.Notifier
	clock       ports.Clock
	cooldown    time.Duration
	logger      *logger.Logger
}

// NewReconcileService creates a new reconciliation service
func NewReconcileService(
	taskRepo ports.TaskRepository,
	productRepo ports.ProductRepository,
	userRepo ports.UserRepository,
	products *ProductService,
	notifier ports.Notifier,
	clock ports.Clock,
	cooldown time.Duration,
	logger *logger.Logger,
) *ReconcileService {
	return &ReconcileService{
		taskRepo:    taskRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		products:    products,
		notifier:    notifier,
		clock:       clock,
		cooldown:    cooldown,
		logger:      logger,
	}
}

// Run executes one reconciliation tick: demotion sweep, then re-evaluation
// sweep. Never returns an error; partial failure is the norm for a batch
// sweep and is handled per task.
func (s *ReconcileService) Run(ctx context.Context) {
	s.DemoteStaleCompleted(ctx)
	s.ReevaluateActive(ctx)
}

// DemoteStaleCompleted resets completed recurring tasks whose completion is
// older than the cooldown back to healthy, re-admitting them to the status
// rule. Non-recurring completed tasks are never demoted: completion is final
// for them.
func (s *ReconcileService) DemoteStaleCompleted(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.cooldown)

	tasks, err := s.taskRepo.GetStaleCompleted(ctx, true, cutoff)
	if err != nil {
		s.logger.Errorw("Demotion sweep failed to load tasks", "error", err)
		return
	}

	demoted := 0
	for _, task := range tasks {
		task.Status = entities.TaskStatusHealthy
		task.UpdatedAt = s.clock.Now()
		if err := s.taskRepo.Update(ctx, task); err != nil {
			s.logger.Errorw("Failed to demote task", "error", err, "task_id", task.ID)
			continue
		}
		demoted++
	}

	if len(tasks) > 0 {
		s.logger.Infow("Demotion sweep finished", "candidates", len(tasks), "demoted", demoted)
	}
}

// ReevaluateActive re-derives the status of every healthy or maintenance
// task from the current time. Overdue and completed tasks are excluded, so
// an overdue task is never auto-healed and a completion is never overwritten
// here. When the derived status differs from the stored one, the new status
// is persisted and the owner is notified once.
func (s *ReconcileService) ReevaluateActive(ctx context.Context) {
	tasks, err := s.taskRepo.GetByStatus(ctx, []entities.TaskStatus{
		entities.TaskStatusHealthy,
		entities.TaskStatusMaintenance,
	})
	if err != nil {
		s.logger.Errorw("Re-evaluation sweep failed to load tasks", "error", err)
		return
	}

	now := s.clock.Now()
	changed := 0
	touchedProducts := make(map[uuid.UUID]struct{})

	for _, task := range tasks {
		product, err := s.productRepo.GetByID(ctx, task.ProductID)
		if err != nil {
			s.logger.Warnw("Skipping task with dangling product reference",
				"task_id", task.ID, "product_id", task.ProductID, "error", err)
			continue
		}

		user, err := s.userRepo.GetByID(ctx, task.UserID)
		if err != nil {
			s.logger.Warnw("Skipping task with dangling user reference",
				"task_id", task.ID, "user_id", task.UserID, "error", err)
			continue
		}

		computed := entities.DetermineStatus(task, now)
		if computed == task.Status {
			continue
		}

		task.Status = computed
		task.UpdatedAt = now
		if err := s.taskRepo.Update(ctx, task); err != nil {
			s.logger.Errorw("Failed to persist re-evaluated status",
				"error", err, "task_id", task.ID, "status", computed)
			continue
		}
		changed++
		touchedProducts[task.ProductID] = struct{}{}

		if err := s.notifier.Notify(ctx, user, product, task); err != nil {
			s.logger.Errorw("Failed to notify on status change",
				"error", err, "task_id", task.ID, "user_id", user.ID)
		}
	}

	// Affected products pick up the new worst-of status in one pass after
	// the sweep.
	for productID := range touchedProducts {
		if err := s.products.RecomputeStatus(ctx, productID); err != nil {
			s.logger.Errorw("Failed to recompute product status after sweep",
				"error", err, "product_id", productID)
		}
	}

	if changed > 0 {
		s.logger.Infow("Re-evaluation sweep finished",
			"evaluated", len(tasks), "changed", changed, "products_recomputed", len(touchedProducts))
	}
}
