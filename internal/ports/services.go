package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
)

// Clock supplies the current instant. All date math in the engine goes
// through it so sweeps and the status rule are testable with fixed times.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Notifier delivers a maintenance reminder for a task. Delivery is
// best-effort: implementations may enqueue async sending, and failures are
// logged rather than propagated into the engine.
type Notifier interface {
	Notify(ctx context.Context, user *entities.User, product *entities.Product, task *entities.Task) error
}

// ActionLogger records a user action. Fire-and-forget: implementations must
// never fail the calling operation.
type ActionLogger interface {
	LogAction(ctx context.Context, userID uuid.UUID, actionType, entityType string, entityID uuid.UUID, details string)
}

// Request/Response Types

// Auth related types
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type AuthResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *entities.User `json:"user"`
}

// Task related types
type CreateTaskRequest struct {
	TaskName    string  `json:"task_name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`

	// IsRecurring must be sent explicitly; a missing value is rejected.
	IsRecurring *bool `json:"is_recurring" validate:"required"`

	Frequency             *int `json:"frequency" validate:"omitempty,min=1"`
	MaintenanceWindowDays *int `json:"maintenance_window_days" validate:"omitempty,min=0"`

	// FirstMaintenanceDate is the explicit first due date for a recurring
	// task (the start of its first window), or the one-off due date for a
	// non-recurring task.
	FirstMaintenanceDate *time.Time `json:"first_maintenance_date"`
	LastMaintenance      *time.Time `json:"last_maintenance"`
}

type UpdateTaskRequest struct {
	TaskName              *string    `json:"task_name" validate:"omitempty,max=200"`
	Description           *string    `json:"description" validate:"omitempty,max=2000"`
	Frequency             *int       `json:"frequency" validate:"omitempty,min=1"`
	MaintenanceWindowDays *int       `json:"maintenance_window_days" validate:"omitempty,min=0"`
	NextMaintenance       *time.Time `json:"next_maintenance"`
}

type PostponeTaskRequest struct {
	Days int `json:"days" validate:"required,min=1"`
}

// Product related types
type CreateProductRequest struct {
	Name                    string     `json:"name" validate:"required,max=200"`
	Category                *string    `json:"category" validate:"omitempty,max=100"`
	Manufacturer            *string    `json:"manufacturer" validate:"omitempty,max=200"`
	Model                   *string    `json:"model" validate:"omitempty,max=200"`
	Tags                    []string   `json:"tags" validate:"omitempty,dive,max=50"`
	PurchaseDate            *time.Time `json:"purchase_date"`
	IconURL                 *string    `json:"icon_url"`
	NotificationPreferences []int      `json:"notification_preferences" validate:"omitempty,dive,min=0"`
}

type UpdateProductRequest struct {
	Name                    *string    `json:"name" validate:"omitempty,max=200"`
	Category                *string    `json:"category" validate:"omitempty,max=100"`
	Manufacturer            *string    `json:"manufacturer" validate:"omitempty,max=200"`
	Model                   *string    `json:"model" validate:"omitempty,max=200"`
	Tags                    []string   `json:"tags" validate:"omitempty,dive,max=50"`
	PurchaseDate            *time.Time `json:"purchase_date"`
	IconURL                 *string    `json:"icon_url"`
	NotificationPreferences []int      `json:"notification_preferences" validate:"omitempty,dive,min=0"`
}

// Calendar related types

// CalendarEvent is a task projected into a calendar view. Start and End both
// carry the task's next maintenance date; tasks without one have nil dates so
// clients can render them in an unscheduled bucket.
type CalendarEvent struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Start       *time.Time   `json:"start"`
	End         *time.Time   `json:"end"`
	Product     EventProduct `json:"product"`
}

type EventProduct struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Response types for pagination and common structures
type PaginatedResponse[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
