package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrValidation      = errors.New("validation error")
)

// TaskStatus is the lifecycle status of a maintenance task.
type TaskStatus string

const (
	TaskStatusHealthy     TaskStatus = "healthy"
	TaskStatusMaintenance TaskStatus = "maintenance"
	TaskStatusOverdue     TaskStatus = "overdue"
	TaskStatusCompleted   TaskStatus = "completed"
)

// ProductStatus is the aggregated status of a product. A product is never
// "completed" - it only reflects the worst status among its active tasks.
type ProductStatus string

const (
	ProductStatusHealthy     ProductStatus = "healthy"
	ProductStatusMaintenance ProductStatus = "maintenance"
	ProductStatusOverdue     ProductStatus = "overdue"
)

// MaintenanceWindow is the tolerance range during which a recurring task is
// due but not yet overdue.
type MaintenanceWindow struct {
	StartDate time.Time `json:"start_date" db:"window_start"`
	EndDate   time.Time `json:"end_date" db:"window_end"`
}

// Task represents a single maintenance item attached to a product.
type Task struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`

	TaskName    string  `json:"task_name" db:"task_name"`
	Description *string `json:"description" db:"description"`

	Status TaskStatus `json:"status" db:"status"`

	IsRecurring           bool               `json:"is_recurring" db:"is_recurring"`
	Frequency             *int               `json:"frequency" db:"frequency"`
	MaintenanceWindowDays *int               `json:"maintenance_window_days" db:"maintenance_window_days"`
	MaintenanceWindow     *MaintenanceWindow `json:"maintenance_window_dates"`

	LastMaintenance *time.Time `json:"last_maintenance" db:"last_maintenance"`
	NextMaintenance *time.Time `json:"next_maintenance" db:"next_maintenance"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Product represents an appliance or device that requires maintenance.
type Product struct {
	ID     uuid.UUID `json:"id" db:"id"`
	UserID uuid.UUID `json:"user_id" db:"user_id"`

	Name         string     `json:"name" db:"name"`
	Slug         string     `json:"slug" db:"slug"`
	Category     *string    `json:"category" db:"category"`
	Manufacturer *string    `json:"manufacturer" db:"manufacturer"`
	Model        *string    `json:"model" db:"model"`
	Tags         []string   `json:"tags" db:"tags"`
	PurchaseDate *time.Time `json:"purchase_date" db:"purchase_date"`
	IconURL      string     `json:"icon_url" db:"icon_url"`

	Status ProductStatus `json:"status" db:"status"`

	// TaskIDs references the tasks attached to this product. The product
	// does not own the task lifecycle, only the references.
	TaskIDs []uuid.UUID `json:"tasks"`

	LastOverallMaintenance *uuid.UUID `json:"last_overall_maintenance" db:"last_overall_maintenance"`
	NextOverallMaintenance *uuid.UUID `json:"next_overall_maintenance" db:"next_overall_maintenance"`

	// NotificationPreferences is an ordered list of "days before the due
	// date" offsets at which reminders fire.
	NotificationPreferences []int `json:"notification_preferences"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultNotificationPreferences is used when a product has no explicit
// preference list: notify one day before and on the due date.
var DefaultNotificationPreferences = []int{1, 0}

// User represents an account that owns products and tasks.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ActionLog is an audit record of a user action on an entity.
type ActionLog struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	ActionType string    `json:"action_type" db:"action_type"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id" db:"entity_id"`
	Details    string    `json:"details" db:"details"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Severity orders task statuses for product aggregation: the product takes
// the worst status among its tasks. Completed tasks carry no severity.
func (ts TaskStatus) Severity() int {
	switch ts {
	case TaskStatusOverdue:
		return 2
	case TaskStatusMaintenance:
		return 1
	default:
		return 0
	}
}

func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusHealthy, TaskStatusMaintenance, TaskStatusOverdue, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

func (ps ProductStatus) IsValid() bool {
	switch ps {
	case ProductStatusHealthy, ProductStatusMaintenance, ProductStatusOverdue:
		return true
	default:
		return false
	}
}

// Preferences returns the product's notification offsets, falling back to
// the default list when none are configured.
func (p *Product) Preferences() []int {
	if len(p.NotificationPreferences) == 0 {
		return DefaultNotificationPreferences
	}
	return p.NotificationPreferences
}

// HasTask reports whether the product references the given task.
func (p *Product) HasTask(taskID uuid.UUID) bool {
	for _, id := range p.TaskIDs {
		if id == taskID {
			return true
		}
	}
	return false
}

// ValidateRecurrence checks the invariant between IsRecurring and the
// recurrence fields: a recurring task needs a positive frequency, a one-off
// task must not carry recurrence configuration.
func (t *Task) ValidateRecurrence() error {
	if t.IsRecurring {
		if t.Frequency == nil || *t.Frequency <= 0 {
			return errors.New("recurring task requires a positive frequency")
		}
		if t.MaintenanceWindowDays != nil && *t.MaintenanceWindowDays < 0 {
			return errors.New("maintenance window days must not be negative")
		}
		return nil
	}
	if t.Frequency != nil || t.MaintenanceWindowDays != nil {
		return errors.New("non-recurring task must not set frequency or maintenance window")
	}
	return nil
}
