package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

const taskColumns = `id, product_id, user_id, task_name, description, status,
		is_recurring, frequency, maintenance_window_days, window_start, window_end,
		last_maintenance, next_maintenance, created_at, updated_at`

// taskRow flattens the maintenance window for scanning.
type taskRow struct {
	ID                    uuid.UUID           `db:"id"`
	ProductID             uuid.UUID           `db:"product_id"`
	UserID                uuid.UUID           `db:"user_id"`
	TaskName              string              `db:"task_name"`
	Description           *string             `db:"description"`
	Status                entities.TaskStatus `db:"status"`
	IsRecurring           bool                `db:"is_recurring"`
	Frequency             *int                `db:"frequency"`
	MaintenanceWindowDays *int                `db:"maintenance_window_days"`
	WindowStart           *time.Time          `db:"window_start"`
	WindowEnd             *time.Time          `db:"window_end"`
	LastMaintenance       *time.Time          `db:"last_maintenance"`
	NextMaintenance       *time.Time          `db:"next_maintenance"`
	CreatedAt             time.Time           `db:"created_at"`
	UpdatedAt             time.Time           `db:"updated_at"`
}

func (r taskRow) toEntity() *entities.Task {
	task := &entities.Task{
		ID:                    r.ID,
		ProductID:             r.ProductID,
		UserID:                r.UserID,
		TaskName:              r.TaskName,
		Description:           r.Description,
		Status:                r.Status,
		IsRecurring:           r.IsRecurring,
		Frequency:             r.Frequency,
		MaintenanceWindowDays: r.MaintenanceWindowDays,
		LastMaintenance:       r.LastMaintenance,
		NextMaintenance:       r.NextMaintenance,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
	if r.WindowStart != nil && r.WindowEnd != nil {
		task.MaintenanceWindow = &entities.MaintenanceWindow{
			StartDate: *r.WindowStart,
			EndDate:   *r.WindowEnd,
		}
	}
	return task
}

func windowColumns(task *entities.Task) (start, end *time.Time) {
	if task.MaintenanceWindow != nil {
		return &task.MaintenanceWindow.StartDate, &task.MaintenanceWindow.EndDate
	}
	return nil, nil
}

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (id, product_id, user_id, task_name, description, status,
			is_recurring, frequency, maintenance_window_days, window_start, window_end,
			last_maintenance, next_maintenance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	start, end := windowColumns(task)
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.ProductID, task.UserID, task.TaskName, task.Description, task.Status,
		task.IsRecurring, task.Frequency, task.MaintenanceWindowDays, start, end,
		task.LastMaintenance, task.NextMaintenance, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	var row taskRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return row.toEntity(), nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := `
		UPDATE tasks
		SET task_name = $2, description = $3, status = $4, is_recurring = $5,
			frequency = $6, maintenance_window_days = $7, window_start = $8,
			window_end = $9, last_maintenance = $10, next_maintenance = $11,
			updated_at = $12
		WHERE id = $1`

	start, end := windowColumns(task)
	result, err := r.db.ExecContext(ctx, query,
		task.ID, task.TaskName, task.Description, task.Status, task.IsRecurring,
		task.Frequency, task.MaintenanceWindowDays, start, end,
		task.LastMaintenance, task.NextMaintenance, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argn := 0

	arg := func(v interface{}) string {
		argn++
		args = append(args, v)
		return fmt.Sprintf("$%d", argn)
	}

	if filter.UserID != nil {
		conditions = append(conditions, "user_id = "+arg(*filter.UserID))
	}
	if filter.ProductID != nil {
		conditions = append(conditions, "product_id = "+arg(*filter.ProductID))
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = "+arg(*filter.Status))
	}
	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, "task_name ILIKE "+arg("%"+*filter.Search+"%"))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC LIMIT %s OFFSET %s`,
		taskColumns, where, arg(limit), arg(filter.Offset))

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*entities.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toEntity()
	}

	return tasks, total, nil
}

func (r *TaskRepositoryImpl) GetByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY next_maintenance NULLS LAST`

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("get tasks by user: %w", err)
	}

	tasks := make([]*entities.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toEntity()
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) GetByProduct(ctx context.Context, productID uuid.UUID) ([]*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE product_id = $1 ORDER BY created_at`

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, productID); err != nil {
		return nil, fmt.Errorf("get tasks by product: %w", err)
	}

	tasks := make([]*entities.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toEntity()
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) GetByStatus(ctx context.Context, statuses []entities.TaskStatus) ([]*entities.Task, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE status = ANY($1) ORDER BY created_at`

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(values)); err != nil {
		return nil, fmt.Errorf("get tasks by status: %w", err)
	}

	tasks := make([]*entities.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toEntity()
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) GetWithUpcomingMaintenance(ctx context.Context) ([]*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE next_maintenance IS NOT NULL
		ORDER BY next_maintenance`

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("get tasks with upcoming maintenance: %w", err)
	}

	tasks := make([]*entities.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toEntity()
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) GetStaleCompleted(ctx context.Context, recurringOnly bool, before time.Time) ([]*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status = 'completed'
			AND last_maintenance IS NOT NULL
			AND last_maintenance <= $1
			AND ($2 = false OR is_recurring = true)
		ORDER BY last_maintenance`

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, before, recurringOnly); err != nil {
		return nil, fmt.Errorf("get stale completed tasks: %w", err)
	}

	tasks := make([]*entities.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toEntity()
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) PullTaskFromAllProducts(ctx context.Context, taskID uuid.UUID) error {
	query := `UPDATE products SET task_ids = array_remove(task_ids, $1) WHERE $1 = ANY(task_ids)`

	_, err := r.db.ExecContext(ctx, query, taskID)
	if err != nil {
		return fmt.Errorf("pull task from products: %w", err)
	}

	return nil
}
