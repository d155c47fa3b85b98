package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Coffee Machine", "coffee-machine"},
		{"  Fridge  ", "fridge"},
		{"Bosch WAT28400 (2021)", "bosch-wat28400-2021"},
		{"---", ""},
		{"Déjà Vu", "déjà-vu"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), "slugify(%q)", tt.in)
	}
}

func TestCreateProductSlugCollision(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	ctx := context.Background()

	first, err := env.products.CreateProduct(ctx, user.ID, ports.CreateProductRequest{Name: "Coffee Machine"})
	require.NoError(t, err)
	assert.Equal(t, "coffee-machine", first.Slug)

	second, err := env.products.CreateProduct(ctx, user.ID, ports.CreateProductRequest{Name: "Coffee Machine"})
	require.NoError(t, err)
	assert.Equal(t, "coffee-machine-1", second.Slug)

	third, err := env.products.CreateProduct(ctx, user.ID, ports.CreateProductRequest{Name: "Coffee Machine"})
	require.NoError(t, err)
	assert.Equal(t, "coffee-machine-2", third.Slug)
}

func TestCreateProductDefaults(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()

	product, err := env.products.CreateProduct(context.Background(), user.ID, ports.CreateProductRequest{Name: "Boiler"})
	require.NoError(t, err)

	assert.Equal(t, entities.ProductStatusHealthy, product.Status)
	assert.Equal(t, defaultProductIcon, product.IconURL)
	// No explicit preferences stored; the default applies at read time.
	assert.Equal(t, entities.DefaultNotificationPreferences, product.Preferences())
}

func TestRecomputeStatusPointers(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)
	ctx := context.Background()

	older := now.AddDate(0, 0, -20)
	newer := now.AddDate(0, 0, -5)
	soon := now.AddDate(0, 0, 3)
	later := now.AddDate(0, 0, 40)

	recently := &entities.Task{
		ID: uuid.New(), ProductID: product.ID, UserID: user.ID,
		TaskName: "Recently serviced", Status: entities.TaskStatusHealthy,
		LastMaintenance: &newer, NextMaintenance: &later,
	}
	dueSoon := &entities.Task{
		ID: uuid.New(), ProductID: product.ID, UserID: user.ID,
		TaskName: "Due soon", Status: entities.TaskStatusMaintenance,
		LastMaintenance: &older, NextMaintenance: &soon,
	}
	require.NoError(t, env.taskRepo.Create(ctx, recently))
	require.NoError(t, env.taskRepo.Create(ctx, dueSoon))

	require.NoError(t, env.products.RecomputeStatus(ctx, product.ID))

	stored, err := env.productRepo.GetByID(ctx, product.ID)
	require.NoError(t, err)

	assert.Equal(t, entities.ProductStatusMaintenance, stored.Status)
	// Pointers track the most recently completed and soonest upcoming tasks.
	require.NotNil(t, stored.LastOverallMaintenance)
	assert.Equal(t, recently.ID, *stored.LastOverallMaintenance)
	require.NotNil(t, stored.NextOverallMaintenance)
	assert.Equal(t, dueSoon.ID, *stored.NextOverallMaintenance)
}

func TestRecomputeStatusEmptyProduct(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)
	ctx := context.Background()

	require.NoError(t, env.products.RecomputeStatus(ctx, product.ID))

	stored, err := env.productRepo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProductStatusHealthy, stored.Status)
	assert.Nil(t, stored.LastOverallMaintenance)
	assert.Nil(t, stored.NextOverallMaintenance)
}

func TestDeleteProductCascadesTasks(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)
	ctx := context.Background()

	task, err := env.tasks.CreateTask(ctx, user.ID, product.ID, ports.CreateTaskRequest{
		TaskName:    "Will be cascaded",
		IsRecurring: boolPtr(false),
	})
	require.NoError(t, err)

	require.NoError(t, env.products.DeleteProduct(ctx, user.ID, product.ID))

	_, err = env.productRepo.GetByID(ctx, product.ID)
	assert.ErrorIs(t, err, entities.ErrProductNotFound)

	_, err = env.taskRepo.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestProductOwnershipEnforced(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	product := env.seedProduct(user.ID)
	ctx := context.Background()

	stranger := uuid.New()

	_, err := env.products.UpdateProduct(ctx, stranger, product.ID, ports.UpdateProductRequest{})
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	err = env.products.DeleteProduct(ctx, stranger, product.ID)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestUpdateProductReslugsOnRename(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	env := newTestEnv(now)
	user := env.seedUser()
	ctx := context.Background()

	product, err := env.products.CreateProduct(ctx, user.ID, ports.CreateProductRequest{Name: "Old Name"})
	require.NoError(t, err)
	assert.Equal(t, "old-name", product.Slug)

	name := "Shiny New Name"
	updated, err := env.products.UpdateProduct(ctx, user.ID, product.ID, ports.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "shiny-new-name", updated.Slug)
}
