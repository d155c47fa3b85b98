package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

// In-memory fakes for the repository and outbound ports. They implement just
// enough behavior for the service tests to exercise real logic against fixed
// clocks without a database.

type fakeTaskRepo struct {
	tasks map[uuid.UUID]*entities.Task
	// productRepo lets PullTaskFromAllProducts mirror the SQL behavior.
	productRepo *fakeProductRepo
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[uuid.UUID]*entities.Task)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *entities.Task) error {
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *entities.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return entities.ErrTaskNotFound
	}
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.tasks[id]; !ok {
		return entities.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, int, error) {
	var out []*entities.Task
	for _, task := range r.tasks {
		if filter.UserID != nil && task.UserID != *filter.UserID {
			continue
		}
		if filter.ProductID != nil && task.ProductID != *filter.ProductID {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Search != nil && !strings.Contains(strings.ToLower(task.TaskName), strings.ToLower(*filter.Search)) {
			continue
		}
		cp := *task
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeTaskRepo) GetByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Task, error) {
	var out []*entities.Task
	for _, task := range r.tasks {
		if task.UserID == userID {
			cp := *task
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) GetByProduct(ctx context.Context, productID uuid.UUID) ([]*entities.Task, error) {
	var out []*entities.Task
	for _, task := range r.tasks {
		if task.ProductID == productID {
			cp := *task
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) GetByStatus(ctx context.Context, statuses []entities.TaskStatus) ([]*entities.Task, error) {
	var out []*entities.Task
	for _, task := range r.tasks {
		for _, s := range statuses {
			if task.Status == s {
				cp := *task
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) GetWithUpcomingMaintenance(ctx context.Context) ([]*entities.Task, error) {
	var out []*entities.Task
	for _, task := range r.tasks {
		if task.NextMaintenance != nil {
			cp := *task
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) GetStaleCompleted(ctx context.Context, recurringOnly bool, before time.Time) ([]*entities.Task, error) {
	var out []*entities.Task
	for _, task := range r.tasks {
		if task.Status != entities.TaskStatusCompleted {
			continue
		}
		if task.LastMaintenance == nil || task.LastMaintenance.After(before) {
			continue
		}
		if recurringOnly && !task.IsRecurring {
			continue
		}
		cp := *task
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeTaskRepo) PullTaskFromAllProducts(ctx context.Context, taskID uuid.UUID) error {
	if r.productRepo == nil {
		return nil
	}
	for _, product := range r.productRepo.products {
		var kept []uuid.UUID
		for _, id := range product.TaskIDs {
			if id != taskID {
				kept = append(kept, id)
			}
		}
		product.TaskIDs = kept
	}
	return nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*entities.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*entities.Product)}
}

func (r *fakeProductRepo) Create(ctx context.Context, product *entities.Product) error {
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, entities.ErrProductNotFound
	}
	cp := *product
	return &cp, nil
}

func (r *fakeProductRepo) GetBySlug(ctx context.Context, slug string) (*entities.Product, error) {
	for _, product := range r.products {
		if product.Slug == slug {
			cp := *product
			return &cp, nil
		}
	}
	return nil, entities.ErrProductNotFound
}

func (r *fakeProductRepo) Update(ctx context.Context, product *entities.Product) error {
	existing, ok := r.products[product.ID]
	if !ok {
		return entities.ErrProductNotFound
	}
	cp := *product
	// Task refs are owned by UpdateTaskRefs, keep them.
	cp.TaskIDs = existing.TaskIDs
	r.products[product.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return entities.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter ports.ProductFilter) ([]*entities.Product, int, error) {
	var out []*entities.Product
	for _, product := range r.products {
		if filter.UserID != nil && product.UserID != *filter.UserID {
			continue
		}
		if filter.Category != nil && (product.Category == nil || *product.Category != *filter.Category) {
			continue
		}
		cp := *product
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeProductRepo) UpdateTaskRefs(ctx context.Context, productID uuid.UUID, op ports.TaskRefOp, taskID uuid.UUID) error {
	product, ok := r.products[productID]
	if !ok {
		return entities.ErrProductNotFound
	}
	switch op {
	case ports.TaskRefAdd:
		if !product.HasTask(taskID) {
			product.TaskIDs = append(product.TaskIDs, taskID)
		}
	case ports.TaskRefRemove:
		var kept []uuid.UUID
		for _, id := range product.TaskIDs {
			if id != taskID {
				kept = append(kept, id)
			}
		}
		product.TaskIDs = kept
	}
	return nil
}

func (r *fakeProductRepo) ListCategories(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, product := range r.products {
		if product.Category == nil || *product.Category == "" {
			continue
		}
		if _, ok := seen[*product.Category]; ok {
			continue
		}
		seen[*product.Category] = struct{}{}
		out = append(out, *product.Category)
	}
	return out, nil
}

func (r *fakeProductRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	for _, product := range r.products {
		if product.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entities.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entities.User) error {
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entities.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return entities.ErrUserNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return entities.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

var errCacheMiss = errors.New("cache miss")

// fakeCache always misses; it records pattern flushes.
type fakeCache struct {
	flushedPatterns []string
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errCacheMiss
}

func (c *fakeCache) Delete(ctx context.Context, key string) error { return nil }

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.flushedPatterns = append(c.flushedPatterns, pattern)
	return nil
}

type notification struct {
	UserID uuid.UUID
	TaskID uuid.UUID
}

// fakeNotifier records every delivery.
type fakeNotifier struct {
	sent []notification
}

func (n *fakeNotifier) Notify(ctx context.Context, user *entities.User, product *entities.Product, task *entities.Task) error {
	n.sent = append(n.sent, notification{UserID: user.ID, TaskID: task.ID})
	return nil
}

// fakeActionLog records audit calls without persistence.
type fakeActionLog struct {
	actions []string
}

func (l *fakeActionLog) LogAction(ctx context.Context, userID uuid.UUID, actionType, entityType string, entityID uuid.UUID, details string) {
	l.actions = append(l.actions, actionType+":"+entityType)
}

func fixedClock(t time.Time) ports.ClockFunc {
	return func() time.Time { return t }
}
