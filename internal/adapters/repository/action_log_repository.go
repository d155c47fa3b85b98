package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

// ActionLogRepositoryImpl implements the ActionLogRepository interface
type ActionLogRepositoryImpl struct {
	db *sqlx.DB
}

// NewActionLogRepository creates a new action log repository
func NewActionLogRepository(db *sqlx.DB) ports.ActionLogRepository {
	return &ActionLogRepositoryImpl{db: db}
}

func (r *ActionLogRepositoryImpl) Create(ctx context.Context, log *entities.ActionLog) error {
	query := `
		INSERT INTO action_logs (id, user_id, action_type, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx, query,
		log.ID, log.UserID, log.ActionType, log.EntityType, log.EntityID, log.Details, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("create action log: %w", err)
	}

	return nil
}

func (r *ActionLogRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.ActionLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, action_type, entity_type, entity_id, details, created_at
		FROM action_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var logs []*entities.ActionLog
	if err := r.db.SelectContext(ctx, &logs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list action logs: %w", err)
	}

	return logs, nil
}
