package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

// Action and entity type constants used by the audit trail.
const (
	ActionCreate   = "CREATE"
	ActionUpdate   = "UPDATE"
	ActionDelete   = "DELETE"
	ActionComplete = "COMPLETE"
	ActionPostpone = "POSTPONE"

	EntityTask    = "TASK"
	EntityProduct = "PRODUCT"
	EntityUser    = "USER"
)

// ActionLogService records user actions for auditing. It is fire-and-forget:
// a failed write is logged and never fails the calling operation.
type ActionLogService struct {
	logRepo ports.ActionLogRepository
	clock   ports.Clock
	logger  *logger.Logger
}

// NewActionLogService creates a new action log service
func NewActionLogService(logRepo ports.ActionLogRepository, clock ports.Clock, logger *logger.Logger) *ActionLogService {
	return &ActionLogService{
		logRepo: logRepo,
		clock:   clock,
		logger:  logger,
	}
}

// LogAction persists an audit record for a user action.
func (s *ActionLogService) LogAction(ctx context.Context, userID uuid.UUID, actionType, entityType string, entityID uuid.UUID, details string) {
	if userID == uuid.Nil || actionType == "" || entityType == "" || entityID == uuid.Nil {
		s.logger.Warnw("logAction called with missing parameters",
			"user_id", userID, "action_type", actionType,
			"entity_type", entityType, "entity_id", entityID,
		)
		return
	}

	record := &entities.ActionLog{
		ID:         uuid.New(),
		UserID:     userID,
		ActionType: actionType,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.logRepo.Create(ctx, record); err != nil {
		s.logger.WithError(err).Errorw("Failed to save action log",
			"user_id", userID, "action_type", actionType,
		)
		return
	}

	s.logger.LogUserAction(userID.String(), actionType, map[string]interface{}{
		"entity_type": entityType,
		"entity_id":   entityID.String(),
	})
}

// ListUserActions returns the most recent audit records for a user.
func (s *ActionLogService) ListUserActions(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.ActionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.logRepo.ListByUser(ctx, userID, limit)
}
