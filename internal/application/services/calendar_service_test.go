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

func newCalendar(env *testEnv) *CalendarService {
	return NewCalendarService(env.taskRepo, env.productRepo, logger.NewNop())
}

func TestUserEventsCarryProductNames(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)

	due := now.AddDate(0, 0, 14)
	task := &entities.Task{
		ID:              uuid.New(),
		ProductID:       product.ID,
		UserID:          user.ID,
		TaskName:        "Descale",
		Status:          entities.TaskStatusHealthy,
		NextMaintenance: &due,
	}
	require.NoError(t, env.taskRepo.Create(context.Background(), task))

	events, err := newCalendar(env).UserEvents(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, task.ID, events[0].ID)
	assert.Equal(t, "Descale", events[0].Title)
	assert.Equal(t, due, *events[0].Start)
	assert.Equal(t, due, *events[0].End)
	assert.Equal(t, product.ID, events[0].Product.ID)
	assert.Equal(t, product.Name, events[0].Product.Name)
}

func TestUserEventsIncludeUnscheduledTasks(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)

	task := &entities.Task{
		ID:        uuid.New(),
		ProductID: product.ID,
		UserID:    user.ID,
		TaskName:  "One day",
		Status:    entities.TaskStatusHealthy,
	}
	require.NoError(t, env.taskRepo.Create(context.Background(), task))

	events, err := newCalendar(env).UserEvents(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].Start)
	assert.Nil(t, events[0].End)
}

func TestUserEventsTolerateDanglingProduct(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()

	task := &entities.Task{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		UserID:    user.ID,
		TaskName:  "Orphaned",
		Status:    entities.TaskStatusHealthy,
	}
	require.NoError(t, env.taskRepo.Create(context.Background(), task))

	events, err := newCalendar(env).UserEvents(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Unknown product", events[0].Product.Name)
}

func TestProductEventsScopedToProduct(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)
	other := env.seedProduct(user.ID)

	mine := &entities.Task{
		ID: uuid.New(), ProductID: product.ID, UserID: user.ID,
		TaskName: "Mine", Status: entities.TaskStatusHealthy,
	}
	theirs := &entities.Task{
		ID: uuid.New(), ProductID: other.ID, UserID: user.ID,
		TaskName: "Elsewhere", Status: entities.TaskStatusHealthy,
	}
	require.NoError(t, env.taskRepo.Create(context.Background(), mine))
	require.NoError(t, env.taskRepo.Create(context.Background(), theirs))

	events, err := newCalendar(env).ProductEvents(context.Background(), user.ID, product.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, mine.ID, events[0].ID)
}

func TestProductEventsEnforceOwnership(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	owner := env.seedUser()
	product := env.seedProduct(owner.ID)

	_, err := newCalendar(env).ProductEvents(context.Background(), uuid.New(), product.ID)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}
