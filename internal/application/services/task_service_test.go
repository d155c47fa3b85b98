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
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

type testEnv struct {
	now         time.Time
	taskRepo    *fakeTaskRepo
	productRepo *fakeProductRepo
	userRepo    *fakeUserRepo
	notifier    *fakeNotifier
	actions     *fakeActionLog
	products    *ProductService
	tasks       *TaskService
}

func newTestEnv(now time.Time) *testEnv {
	taskRepo := newFakeTaskRepo()
	productRepo := newFakeProductRepo()
	taskRepo.productRepo = productRepo
	userRepo := newFakeUserRepo()
	notifier := &fakeNotifier{}
	actions := &fakeActionLog{}
	log := logger.NewNop()
	clock := fixedClock(now)

	products := NewProductService(productRepo, taskRepo, &fakeCache{}, time.Minute, actions, clock, log)
	tasks := NewTaskService(taskRepo, productRepo, products, actions, clock, log)

	return &testEnv{
		now:         now,
		taskRepo:    taskRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		actions:     actions,
		products:    products,
		tasks:       tasks,
	}
}

func (e *testEnv) seedUser() *entities.User {
	user := &entities.User{
		ID:    uuid.New(),
		Email: "owner@example.com",
		Name:  "Owner",
	}
	_ = e.userRepo.Create(context.Background(), user)
	return user
}

func (e *testEnv) seedProduct(userID uuid.UUID) *entities.Product {
	product := &entities.Product{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "Dishwasher",
		Slug:   "dishwasher",
		Status: entities.ProductStatusHealthy,
	}
	_ = e.productRepo.Create(context.Background(), product)
	return product
}

func boolPtr(v bool) *bool           { return &v }
func intPtr(v int) *int              { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func TestCreateTaskRecurring(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)

	task, err := env.tasks.CreateTask(context.Background(), user.ID, product.ID, ports.CreateTaskRequest{
		TaskName:              "Clean filter",
		IsRecurring:           boolPtr(true),
		Frequency:             intPtr(30),
		MaintenanceWindowDays: intPtr(5),
		LastMaintenance:       timePtr(now),
	})
	require.NoError(t, err)

	// Next due date comes from last maintenance plus frequency.
	require.NotNil(t, task.NextMaintenance)
	assert.Equal(t, now.AddDate(0, 0, 30), *task.NextMaintenance)
	require.NotNil(t, task.MaintenanceWindow)
	assert.Equal(t, now.AddDate(0, 0, 30), task.MaintenanceWindow.StartDate)
	assert.Equal(t, now.AddDate(0, 0, 35), task.MaintenanceWindow.EndDate)

	// 30 days out is beyond the due-soon horizon.
	assert.Equal(t, entities.TaskStatusHealthy, task.Status)

	// The product now references the task.
	stored, err := env.productRepo.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasTask(task.ID))
	assert.Contains(t, env.actions.actions, "CREATE:TASK")
}

func TestCreateTaskExplicitFirstDate(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)

	first := now.AddDate(0, 0, 3)
	task, err := env.tasks.CreateTask(context.Background(), user.ID, product.ID, ports.CreateTaskRequest{
		TaskName:             "Descale",
		IsRecurring:          boolPtr(true),
		Frequency:            intPtr(90),
		FirstMaintenanceDate: timePtr(first),
	})
	require.NoError(t, err)

	require.NotNil(t, task.NextMaintenance)
	assert.Equal(t, first, *task.NextMaintenance)
	// Due in 3 days, inside the horizon.
	assert.Equal(t, entities.TaskStatusMaintenance, task.Status)
}

func TestCreateTaskOneOff(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)

	due := now.AddDate(0, 0, 60)
	task, err := env.tasks.CreateTask(context.Background(), user.ID, product.ID, ports.CreateTaskRequest{
		TaskName:             "Install water filter",
		IsRecurring:          boolPtr(false),
		FirstMaintenanceDate: timePtr(due),
	})
	require.NoError(t, err)

	assert.False(t, task.IsRecurring)
	require.NotNil(t, task.NextMaintenance)
	assert.Equal(t, due, *task.NextMaintenance)
	assert.Nil(t, task.MaintenanceWindow)
	assert.Equal(t, entities.TaskStatusHealthy, task.Status)
}

func TestCreateTaskValidation(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)
	ctx := context.Background()

	_, err := env.tasks.CreateTask(ctx, user.ID, product.ID, ports.CreateTaskRequest{
		IsRecurring: boolPtr(false),
	})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = env.tasks.CreateTask(ctx, user.ID, product.ID, ports.CreateTaskRequest{
		TaskName: "No recurrence flag",
	})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = env.tasks.CreateTask(ctx, user.ID, product.ID, ports.CreateTaskRequest{
		TaskName:    "Recurring without frequency",
		IsRecurring: boolPtr(true),
	})
	assert.ErrorIs(t, err, entities.ErrValidation)

	_, err = env.tasks.CreateTask(ctx, user.ID, uuid.New(), ports.CreateTaskRequest{
		TaskName:    "Unknown product",
		IsRecurring: boolPtr(false),
	})
	assert.ErrorIs(t, err, entities.ErrProductNotFound)
}

func TestCompleteTaskRecurring(t *testing.T) {
	now := time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)

	task, err := env.tasks.CreateTask(context.Background(), user.ID, product.ID, ports.CreateTaskRequest{
		TaskName:              "Clean filter",
		IsRecurring:           boolPtr(true),
		Frequency:             intPtr(30),
		MaintenanceWindowDays: intPtr(5),
		FirstMaintenanceDate:  timePtr(now.AddDate(0, 0, -2)),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusOverdue, task.Status)

	completed, err := env.tasks.CompleteTask(context.Background(), user.ID, task.ID)
	require.NoError(t, err)

	assert.Equal(t, entities.TaskStatusCompleted, completed.Status)
	require.NotNil(t, completed.LastMaintenance)
	assert.Equal(t, now, *completed.LastMaintenance)

	// The next cycle is armed immediately, anchored at the completion time.
	require.NotNil(t, completed.NextMaintenance)
	assert.Equal(t, now.AddDate(0, 0, 30), *completed.NextMaintenance)
	require.NotNil(t, completed.MaintenanceWindow)
	assert.Equal(t, now.AddDate(0, 0, 35), completed.MaintenanceWindow.EndDate)

	// Completed tasks carry no severity, so the product is healthy again.
	stored, err := env.productRepo.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProductStatusHealthy, stored.Status)
}

func TestCompleteTaskOneOff(t *testing.T) {
	now := time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)

	task, err := env.tasks.CreateTask(context.Background(), user.ID, product.ID, ports.CreateTaskRequest{
		TaskName:             "Replace battery",
		IsRecurring:          boolPtr(false),
		FirstMaintenanceDate: timePtr(now.AddDate(0, 0, 1)),
	})
	require.NoError(t, err)

	completed, err := env.tasks.CompleteTask(context.Background(), user.ID, task.ID)
	require.NoError(t, err)

	assert.Equal(t, entities.TaskStatusCompleted, completed.Status)
	assert.Nil(t, completed.NextMaintenance)
	assert.Nil(t, completed.MaintenanceWindow)
}

func TestPostponeTask(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)

	due := now.AddDate(0, 0, 2)
	task, err := env.tasks.CreateTask(context.Background(), user.ID, product.ID, ports.CreateTaskRequest{
		TaskName:             "Check seals",
		IsRecurring:          boolPtr(false),
		FirstMaintenanceDate: timePtr(due),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusMaintenance, task.Status)

	postponed, err := env.tasks.PostponeTask(context.Background(), user.ID, task.ID, 14)
	require.NoError(t, err)

	require.NotNil(t, postponed.NextMaintenance)
	assert.Equal(t, due.AddDate(0, 0, 14), *postponed.NextMaintenance)

	// Postponing shifts the date only; status is re-derived by the next
	// reconciliation tick, not here.
	assert.Equal(t, entities.TaskStatusMaintenance, postponed.Status)
}

func TestPostponeTaskValidation(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)

	_, err := env.tasks.PostponeTask(context.Background(), user.ID, uuid.New(), 0)
	assert.ErrorIs(t, err, entities.ErrValidation)

	task, err := env.tasks.CreateTask(context.Background(), user.ID, product.ID, ports.CreateTaskRequest{
		TaskName:    "No due date",
		IsRecurring: boolPtr(false),
	})
	require.NoError(t, err)

	_, err = env.tasks.PostponeTask(context.Background(), user.ID, task.ID, 7)
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestUpdateTaskRederivesStatus(t *testing.T) {
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)

	task, err := env.tasks.CreateTask(context.Background(), user.ID, product.ID, ports.CreateTaskRequest{
		TaskName:             "Flush tank",
		IsRecurring:          boolPtr(false),
		FirstMaintenanceDate: timePtr(now.AddDate(0, 0, 60)),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusHealthy, task.Status)

	updated, err := env.tasks.UpdateTask(context.Background(), user.ID, task.ID, ports.UpdateTaskRequest{
		NextMaintenance: timePtr(now.AddDate(0, 0, -1)),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusOverdue, updated.Status)

	// The owning product picked up the new worst status.
	stored, err := env.productRepo.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProductStatusOverdue, stored.Status)
}

func TestDeleteTaskDetachesFromProduct(t *testing.T) {
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)

	task, err := env.tasks.CreateTask(context.Background(), user.ID, product.ID, ports.CreateTaskRequest{
		TaskName:             "Grease hinges",
		IsRecurring:          boolPtr(false),
		FirstMaintenanceDate: timePtr(now.AddDate(0, 0, -1)),
	})
	require.NoError(t, err)

	require.NoError(t, env.tasks.DeleteTask(context.Background(), user.ID, task.ID))

	_, err = env.taskRepo.GetByID(context.Background(), task.ID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	stored, err := env.productRepo.GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasTask(task.ID))
	// With the overdue task gone the product is healthy again.
	assert.Equal(t, entities.ProductStatusHealthy, stored.Status)
}

func TestTaskOwnershipEnforced(t *testing.T) {
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)

	task, err := env.tasks.CreateTask(context.Background(), user.ID, product.ID, ports.CreateTaskRequest{
		TaskName:    "Private task",
		IsRecurring: boolPtr(false),
	})
	require.NoError(t, err)

	stranger := uuid.New()

	_, err = env.tasks.GetTask(context.Background(), stranger, task.ID)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	_, err = env.tasks.CompleteTask(context.Background(), stranger, task.ID)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	err = env.tasks.DeleteTask(context.Background(), stranger, task.ID)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}
