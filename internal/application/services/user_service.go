package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

// UserService handles user profile operations.
type UserService struct {
	userRepo ports.UserRepository
	cache    ports.CacheRepository
	clock    ports.Clock
	logger   *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo ports.UserRepository, cache ports.CacheRepository, clock ports.Clock, logger *logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		cache:    cache,
		clock:    clock,
		logger:   logger,
	}
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return user, nil
}

// UpdateName changes a user's display name.
func (s *UserService) UpdateName(ctx context.Context, id uuid.UUID, name string) (*entities.User, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", entities.ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	user.Name = name
	user.UpdatedAt = s.clock.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user account. The database cascades deletion of the
// user's products and tasks, so the product cache is flushed wholesale to
// avoid serving entries for rows that no longer exist.
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := s.cache.DeletePattern(ctx, "product:*"); err != nil {
		s.logger.Debugw("Failed to flush product cache", "error", err, "user_id", id)
	}

	s.logger.Infow("User deleted", "user_id", id)
	return nil
}
