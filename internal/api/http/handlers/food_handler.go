package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tablepos/internal/api/dto"
	"github.com/spec-kit/tablepos/internal/service"
)

// FoodHandler exposes the /food endpoints.
type FoodHandler struct {
	menu *service.MenuService
}

// NewFoodHandler constructs handler.
func NewFoodHandler(menu *service.MenuService) *FoodHandler {
	return &FoodHandler{menu: menu}
}

// Categories handles GET /food/categories?isActive&page&limit.
func (h *FoodHandler) Categories(c *fiber.Ctx) error {
	var active *bool
	if raw := c.Query("isActive"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "isActive must be a boolean")
		}
		active = &parsed
	}
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 0)

	categories, total, err := h.menu.Categories(c.UserContext(), active, page, limit)
	if err != nil {
		return err
	}
	out := make([]dto.CategoryWire, 0, len(categories))
	for _, cat := range categories {
		out = append(out, presentCategory(cat))
	}
	return c.JSON(fiber.Map{
		"data": out,
		"meta": dto.PageMeta{Total: total, Page: page, Limit: limit},
	})
}

// Dish handles GET /food/dishes/:id.
func (h *FoodHandler) Dish(c *fiber.Ctx) error {
	dish, err := h.menu.Dish(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": presentDish(*dish)})
}
