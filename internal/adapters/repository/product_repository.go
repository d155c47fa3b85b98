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

const productColumns = `id, user_id, name, slug, category, manufacturer, model, tags,
		purchase_date, icon_url, status, task_ids, last_overall_maintenance,
		next_overall_maintenance, notification_preferences, created_at, updated_at`

// productRow adapts the array columns for scanning.
type productRow struct {
	ID                      uuid.UUID              `db:"id"`
	UserID                  uuid.UUID              `db:"user_id"`
	Name                    string                 `db:"name"`
	Slug                    string                 `db:"slug"`
	Category                *string                `db:"category"`
	Manufacturer            *string                `db:"manufacturer"`
	Model                   *string                `db:"model"`
	Tags                    pq.StringArray         `db:"tags"`
	PurchaseDate            *time.Time             `db:"purchase_date"`
	IconURL                 string                 `db:"icon_url"`
	Status                  entities.ProductStatus `db:"status"`
	TaskIDs                 pq.StringArray         `db:"task_ids"`
	LastOverallMaintenance  *uuid.UUID             `db:"last_overall_maintenance"`
	NextOverallMaintenance  *uuid.UUID             `db:"next_overall_maintenance"`
	NotificationPreferences pq.Int64Array          `db:"notification_preferences"`
	CreatedAt               time.Time              `db:"created_at"`
	UpdatedAt               time.Time              `db:"updated_at"`
}

func (r productRow) toEntity() (*entities.Product, error) {
	taskIDs := make([]uuid.UUID, len(r.TaskIDs))
	for i, raw := range r.TaskIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse task reference %q: %w", raw, err)
		}
		taskIDs[i] = id
	}

	prefs := make([]int, len(r.NotificationPreferences))
	for i, v := range r.NotificationPreferences {
		prefs[i] = int(v)
	}

	return &entities.Product{
		ID:                      r.ID,
		UserID:                  r.UserID,
		Name:                    r.Name,
		Slug:                    r.Slug,
		Category:                r.Category,
		Manufacturer:            r.Manufacturer,
		Model:                   r.Model,
		Tags:                    []string(r.Tags),
		PurchaseDate:            r.PurchaseDate,
		IconURL:                 r.IconURL,
		Status:                  r.Status,
		TaskIDs:                 taskIDs,
		LastOverallMaintenance:  r.LastOverallMaintenance,
		NextOverallMaintenance:  r.NextOverallMaintenance,
		NotificationPreferences: prefs,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}, nil
}

func taskIDStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func prefInts(prefs []int) pq.Int64Array {
	out := make(pq.Int64Array, len(prefs))
	for i, v := range prefs {
		out[i] = int64(v)
	}
	return out
}

// ProductRepositoryImpl implements the ProductRepository interface
type ProductRepositoryImpl struct {
	db *sqlx.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sqlx.DB) ports.ProductRepository {
	return &ProductRepositoryImpl{db: db}
}

func (r *ProductRepositoryImpl) Create(ctx context.Context, product *entities.Product) error {
	query := `
		INSERT INTO products (id, user_id, name, slug, category, manufacturer, model, tags,
			purchase_date, icon_url, status, task_ids, last_overall_maintenance,
			next_overall_maintenance, notification_preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.UserID, product.Name, product.Slug,
		product.Category, product.Manufacturer, product.Model, pq.StringArray(product.Tags),
		product.PurchaseDate, product.IconURL, product.Status, taskIDStrings(product.TaskIDs),
		product.LastOverallMaintenance, product.NextOverallMaintenance,
		prefInts(product.NotificationPreferences), product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r *ProductRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var row productRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	return row.toEntity()
}

func (r *ProductRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*entities.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	var row productRow
	err := r.db.GetContext(ctx, &row, query, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}

	return row.toEntity()
}

func (r *ProductRepositoryImpl) Update(ctx context.Context, product *entities.Product) error {
	query := `
		UPDATE products
		SET name = $2, slug = $3, category = $4, manufacturer = $5, model = $6,
			tags = $7, purchase_date = $8, icon_url = $9, status = $10,
			last_overall_maintenance = $11, next_overall_maintenance = $12,
			notification_preferences = $13, updated_at = $14
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Slug, product.Category, product.Manufacturer,
		product.Model, pq.StringArray(product.Tags), product.PurchaseDate, product.IconURL,
		product.Status, product.LastOverallMaintenance, product.NextOverallMaintenance,
		prefInts(product.NotificationPreferences), product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrProductNotFound
	}

	return nil
}

func (r *ProductRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entities.ErrProductNotFound
	}

	return nil
}

func (r *ProductRepositoryImpl) List(ctx context.Context, filter ports.ProductFilter) ([]*entities.Product, int, error) {
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
	if filter.Category != nil && *filter.Category != "" {
		conditions = append(conditions, "category = "+arg(*filter.Category))
	}
	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, "name ILIKE "+arg("%"+*filter.Search+"%"))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM products WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY created_at DESC LIMIT %s OFFSET %s`,
		productColumns, where, arg(limit), arg(filter.Offset))

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	products := make([]*entities.Product, len(rows))
	for i, row := range rows {
		product, err := row.toEntity()
		if err != nil {
			return nil, 0, err
		}
		products[i] = product
	}

	return products, total, nil
}

func (r *ProductRepositoryImpl) UpdateTaskRefs(ctx context.Context, productID uuid.UUID, op ports.TaskRefOp, taskID uuid.UUID) error {
	var query string
	switch op {
	case ports.TaskRefAdd:
		query = `UPDATE products
			SET task_ids = array_append(task_ids, $2)
			WHERE id = $1 AND NOT ($2 = ANY(task_ids))`
	case ports.TaskRefRemove:
		query = `UPDATE products SET task_ids = array_remove(task_ids, $2) WHERE id = $1`
	default:
		return fmt.Errorf("unknown task ref op %q", op)
	}

	_, err := r.db.ExecContext(ctx, query, productID, taskID.String())
	if err != nil {
		return fmt.Errorf("update task refs: %w", err)
	}

	return nil
}

func (r *ProductRepositoryImpl) ListCategories(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT category FROM products
		WHERE category IS NOT NULL AND category <> ''
		ORDER BY category`

	var categories []string
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r *ProductRepositoryImpl) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1)`, slug)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}

	return exists, nil
}
