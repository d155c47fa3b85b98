package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
)

func TestUpdateNameRejectsEmpty(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo, &fakeCache{}, fixedClock(now), logger.NewNop())

	user := &entities.User{ID: uuid.New(), Email: "a@b.c", Name: "Before"}
	require.NoError(t, userRepo.Create(context.Background(), user))

	_, err := svc.UpdateName(context.Background(), user.ID, "")
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestUpdateNameTouchesTimestamp(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo, &fakeCache{}, fixedClock(now), logger.NewNop())

	user := &entities.User{ID: uuid.New(), Email: "a@b.c", Name: "Before"}
	require.NoError(t, userRepo.Create(context.Background(), user))

	updated, err := svc.UpdateName(context.Background(), user.ID, "After")
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, now, updated.UpdatedAt)
}

func TestDeleteUserFlushesProductCache(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	userRepo := newFakeUserRepo()
	cache := &fakeCache{}
	svc := NewUserService(userRepo, cache, fixedClock(now), logger.NewNop())

	user := &entities.User{ID: uuid.New(), Email: "a@b.c", Name: "Gone"}
	require.NoError(t, userRepo.Create(context.Background(), user))

	require.NoError(t, svc.DeleteUser(context.Background(), user.ID))

	_, err := userRepo.GetByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, entities.ErrUserNotFound)
	assert.Equal(t, []string{"product:*"}, cache.flushedPatterns)
}

func TestDeleteUserMissing(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cache := &fakeCache{}
	svc := NewUserService(newFakeUserRepo(), cache, fixedClock(now), logger.NewNop())

	err := svc.DeleteUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entities.ErrUserNotFound)
	assert.Empty(t, cache.flushedPatterns)
}
