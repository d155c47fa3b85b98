package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

const defaultProductIcon = "/uploads/default-product.png"

// ProductService handles product CRUD and the product-level status
// aggregation derived from the product's tasks.
type ProductService struct {
	productRepo ports.ProductRepository
	taskRepo    ports.TaskRepository
	cache       ports.CacheRepository
	cacheTTL    time.Duration
	actionLog   ports.ActionLogger
	clock       ports.Clock
	logger      *logger.Logger
}

// NewProductService creates a new product service
func NewProductService(
	productRepo ports.ProductRepository,
	taskRepo ports.TaskRepository,
	cache ports.CacheRepository,
	cacheTTL time.Duration,
	actionLog ports.ActionLogger,
	clock ports.Clock,
	logger *logger.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		taskRepo:    taskRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		actionLog:   actionLog,
		clock:       clock,
		logger:      logger,
	}
}

// CreateProduct creates a new product for a user.
func (s *ProductService) CreateProduct(ctx context.Context, userID uuid.UUID, req ports.CreateProductRequest) (*entities.Product, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", entities.ErrValidation)
	}

	slug, err := s.uniqueSlug(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	iconURL := defaultProductIcon
	if req.IconURL != nil && *req.IconURL != "" {
		iconURL = *req.IconURL
	}

	product := &entities.Product{
		ID:                      uuid.New(),
		UserID:                  userID,
		Name:                    req.Name,
		Slug:                    slug,
		Category:                req.Category,
		Manufacturer:            req.Manufacturer,
		Model:                   req.Model,
		Tags:                    req.Tags,
		PurchaseDate:            req.PurchaseDate,
		IconURL:                 iconURL,
		Status:                  entities.ProductStatusHealthy,
		NotificationPreferences: req.NotificationPreferences,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.actionLog.LogAction(ctx, userID, ActionCreate, EntityProduct, product.ID,
		fmt.Sprintf("Product %q was created", product.Name))

	s.logger.Infow("Product created", "product_id", product.ID, "slug", product.Slug)

	return product, nil
}

// GetProduct retrieves a product by ID through a read-through cache.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	key := productCacheKey(id)

	var cached entities.Product
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}

	if err := s.cache.Set(ctx, key, product, s.cacheTTL); err != nil {
		s.logger.Debugw("Failed to cache product", "error", err, "product_id", id)
	}

	return product, nil
}

// GetProductBySlug retrieves a product by its URL slug.
func (s *ProductService) GetProductBySlug(ctx context.Context, slug string) (*entities.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	return product, nil
}

// ListProducts retrieves products with filtering and pagination.
func (s *ProductService) ListProducts(ctx context.Context, filter ports.ProductFilter) ([]*entities.Product, int, error) {
	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// UpdateProduct updates a product's descriptive fields.
func (s *ProductService) UpdateProduct(ctx context.Context, userID, id uuid.UUID, req ports.UpdateProductRequest) (*entities.Product, error) {
	product, err := s.getOwnedProduct(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != product.Name {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: product name must not be empty", entities.ErrValidation)
		}
		product.Name = *req.Name
		slug, err := s.uniqueSlug(ctx, product.Name)
		if err != nil {
			return nil, err
		}
		product.Slug = slug
	}
	if req.Category != nil {
		product.Category = req.Category
	}
	if req.Manufacturer != nil {
		product.Manufacturer = req.Manufacturer
	}
	if req.Model != nil {
		product.Model = req.Model
	}
	if req.Tags != nil {
		product.Tags = req.Tags
	}
	if req.PurchaseDate != nil {
		product.PurchaseDate = req.PurchaseDate
	}
	if req.IconURL != nil {
		product.IconURL = *req.IconURL
	}
	if req.NotificationPreferences != nil {
		product.NotificationPreferences = req.NotificationPreferences
	}

	product.UpdatedAt = s.clock.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidate(ctx, product.ID)

	s.actionLog.LogAction(ctx, userID, ActionUpdate, EntityProduct, product.ID,
		fmt.Sprintf("Product %q was updated", product.Name))

	return product, nil
}

// DeleteProduct deletes a product and cascades deletion of all its tasks.
func (s *ProductService) DeleteProduct(ctx context.Context, userID, id uuid.UUID) error {
	product, err := s.getOwnedProduct(ctx, userID, id)
	if err != nil {
		return err
	}

	tasks, err := s.taskRepo.GetByProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load product tasks: %w", err)
	}
	for _, task := range tasks {
		if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
			return fmt.Errorf("failed to cascade-delete task %s: %w", task.ID, err)
		}
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.invalidate(ctx, id)

	s.actionLog.LogAction(ctx, userID, ActionDelete, EntityProduct, id,
		fmt.Sprintf("Product %q was deleted", product.Name))

	s.logger.Infow("Product deleted", "product_id", id, "cascaded_tasks", len(tasks))

	return nil
}

// ListCategories returns the distinct non-empty product categories.
func (s *ProductService) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// RecomputeStatus re-derives a product's aggregated status and its
// denormalized maintenance pointers from its current task set. The product
// takes the worst status among its tasks; the pointers track the most
// recently completed and the soonest upcoming task. Idempotent, must run
// after any task change affecting the product.
func (s *ProductService) RecomputeStatus(ctx context.Context, productID uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("product not found: %w", err)
	}

	tasks, err := s.taskRepo.GetByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to load product tasks: %w", err)
	}

	product.Status = entities.AggregateProductStatus(tasks)

	var lastTask, nextTask *entities.Task
	for _, task := range tasks {
		if task.LastMaintenance != nil {
			if lastTask == nil || task.LastMaintenance.After(*lastTask.LastMaintenance) {
				lastTask = task
			}
		}
		if task.NextMaintenance != nil {
			if nextTask == nil || task.NextMaintenance.Before(*nextTask.NextMaintenance) {
				nextTask = task
			}
		}
	}

	product.LastOverallMaintenance = nil
	product.NextOverallMaintenance = nil
	if lastTask != nil {
		product.LastOverallMaintenance = &lastTask.ID
	}
	if nextTask != nil {
		product.NextOverallMaintenance = &nextTask.ID
	}

	product.UpdatedAt = s.clock.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to save recomputed product status: %w", err)
	}

	s.invalidate(ctx, productID)

	return nil
}

func (s *ProductService) getOwnedProduct(ctx context.Context, userID, id uuid.UUID) (*entities.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	if product.UserID != userID {
		return nil, entities.ErrUnauthorized
	}
	return product, nil
}

func (s *ProductService) invalidate(ctx context.Context, productID uuid.UUID) {
	if err := s.cache.Delete(ctx, productCacheKey(productID)); err != nil {
		s.logger.Debugw("Failed to invalidate product cache", "error", err, "product_id", productID)
	}
}

func productCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

// uniqueSlug slugifies a product name and appends a numeric suffix until the
// slug is unused.
func (s *ProductService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slugify(name)
	slug := base
	for counter := 1; ; counter++ {
		exists, err := s.productRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
