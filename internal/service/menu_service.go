package service

import (
	"context"

	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/internal/repository"
)

// MenuService serves the food catalogue.
type MenuService struct {
	menu repository.MenuRepository
}

// NewMenuService constructs the service.
func NewMenuService(menu repository.MenuRepository) *MenuService {
	return &MenuService{menu: menu}
}

// Categories returns one page of categories with nested dishes.
func (s *MenuService) Categories(ctx context.Context, active *bool, page, limit int) ([]domain.Category, int, error) {
	all, err := s.menu.Categories(ctx, active)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if limit <= 0 {
		return all, total, nil
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= total {
		return []domain.Category{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// Dish returns one dish.
func (s *MenuService) Dish(ctx context.Context, id string) (*domain.MenuItem, error) {
	return s.menu.Dish(ctx, id)
}
