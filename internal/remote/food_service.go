package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spec-kit/tablepos/internal/api/dto"
	"github.com/spec-kit/tablepos/internal/domain"
)

// CategoryFilter narrows GET /food/categories.
type CategoryFilter struct {
	IsActive *bool
	Page     int
	Limit    int
}

// FoodService calls the /food endpoints.
type FoodService struct {
	client *Client
}

// NewFoodService builds the service.
func NewFoodService(client *Client) *FoodService {
	return &FoodService{client: client}
}

// Categories fetches menu categories with their dishes.
func (s *FoodService) Categories(ctx context.Context, token string, filter CategoryFilter) ([]domain.Category, error) {
	query := url.Values{}
	if filter.IsActive != nil {
		query.Set("isActive", strconv.FormatBool(*filter.IsActive))
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	var wires []dto.CategoryWire
	err := s.client.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/food/categories",
		Query:  query,
		Token:  token,
	}, &wires)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Category, 0, len(wires))
	for _, w := range wires {
		category, err := toCategory(w)
		if err != nil {
			return nil, err
		}
		out = append(out, category)
	}
	return out, nil
}

// Dish fetches one dish.
func (s *FoodService) Dish(ctx context.Context, token, id string) (domain.MenuItem, error) {
	var wire dto.DishWire
	err := s.client.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/food/dishes/" + url.PathEscape(id),
		Token:  token,
	}, &wire)
	if err != nil {
		return domain.MenuItem{}, err
	}
	return toMenuItem(wire, "")
}
