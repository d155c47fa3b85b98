package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
)

// TaskRefOp selects whether a task reference is added to or removed from a
// product's task list.
type TaskRefOp string

const (
	TaskRefAdd    TaskRefOp = "add"
	TaskRefRemove TaskRefOp = "remove"
)

// TaskRepository defines the interface for task data operations
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter TaskFilter) ([]*entities.Task, int, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Task, error)
	GetByProduct(ctx context.Context, productID uuid.UUID) ([]*entities.Task, error)
	GetByStatus(ctx context.Context, statuses []entities.TaskStatus) ([]*entities.Task, error)
	GetWithUpcomingMaintenance(ctx context.Context) ([]*entities.Task, error)
	GetStaleCompleted(ctx context.Context, recurringOnly bool, before time.Time) ([]*entities.Task, error)
	PullTaskFromAllProducts(ctx context.Context, taskID uuid.UUID) error
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entities.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error)
	GetBySlug(ctx context.Context, slug string) (*entities.Product, error)
	Update(ctx context.Context, product *entities.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ProductFilter) ([]*entities.Product, int, error)
	UpdateTaskRefs(ctx context.Context, productID uuid.UUID, op TaskRefOp, taskID uuid.UUID) error
	ListCategories(ctx context.Context) ([]string, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActionLogRepository persists audit records of user actions.
type ActionLogRepository interface {
	Create(ctx context.Context, log *entities.ActionLog) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.ActionLog, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	UserID    *uuid.UUID
	ProductID *uuid.UUID
	Status    *entities.TaskStatus
	Search    *string
	Limit     int
	Offset    int
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	UserID   *uuid.UUID
	Category *string
	Search   *string
	Limit    int
	Offset   int
}
