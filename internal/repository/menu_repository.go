package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/tablepos/internal/domain"
)

// MenuRepository serves categories and dishes.
type MenuRepository interface {
	Categories(ctx context.Context, active *bool) ([]domain.Category, error)
	Dish(ctx context.Context, id string) (*domain.MenuItem, error)
}

type menuRepository struct {
	mu         sync.RWMutex
	categories []domain.Category
}

// NewMenuRepository returns an in-memory implementation over a fixed menu.
func NewMenuRepository(categories []domain.Category) MenuRepository {
	stored := make([]domain.Category, len(categories))
	for i, c := range categories {
		items := make([]domain.MenuItem, len(c.Items))
		for j, item := range c.Items {
			item.Category = c.Name
			items[j] = item
		}
		c.Items = items
		stored[i] = c
	}
	return &menuRepository{categories: stored}
}

func (r *menuRepository) Categories(_ context.Context, active *bool) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		if active != nil && c.IsActive != *active {
			continue
		}
		items := make([]domain.MenuItem, len(c.Items))
		copy(items, c.Items)
		c.Items = items
		out = append(out, c)
	}
	return out, nil
}

func (r *menuRepository) Dish(_ context.Context, id string) (*domain.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		for _, item := range c.Items {
			if item.ID == id {
				out := item
				return &out, nil
			}
		}
	}
	return nil, ErrNotFound
}
