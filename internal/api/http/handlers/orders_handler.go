package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tablepos/internal/api/dto"
	"github.com/spec-kit/tablepos/internal/repository"
	"github.com/spec-kit/tablepos/internal/service"
)

const defaultPageSize = 20

// OrdersHandler exposes the /orders endpoints.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// List handles GET /orders?status&tableId&page&limit.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}

	records, total, err := h.orders.List(c.UserContext(), repository.OrderFilter{
		Status:  c.Query("status"),
		TableID: c.Query("tableId"),
		Limit:   limit,
		Offset:  (page - 1) * limit,
	})
	if err != nil {
		return err
	}

	totalPages := (total + limit - 1) / limit
	return c.JSON(dto.OrderPage{
		Data: h.present(records),
		Meta: dto.PageMeta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	})
}

// ByTable handles GET /orders/table/:tableId.
func (h *OrdersHandler) ByTable(c *fiber.Ctx) error {
	records, err := h.orders.ListByTable(c.UserContext(), c.Params("tableId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.present(records)})
}

// Create handles POST /orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	record, err := h.orders.Create(c.UserContext(), service.OrderCreateInput{
		TableID: req.TableID,
		Notes:   req.Notes,
		Items:   itemInputs(req.Items),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": presentOrder(*record, h.orders.Totals(*record))})
}

// Update handles PUT /orders/:id.
func (h *OrdersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	record, err := h.orders.Update(c.UserContext(), c.Params("id"), service.OrderUpdateInput{
		Status: req.Status,
		Notes:  req.Notes,
		Items:  itemInputs(req.Items),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": presentOrder(*record, h.orders.Totals(*record))})
}

func (h *OrdersHandler) present(records []repository.OrderRecord) []dto.OrderWire {
	out := make([]dto.OrderWire, 0, len(records))
	for _, r := range records {
		out = append(out, presentOrder(r, h.orders.Totals(r)))
	}
	return out
}

func itemInputs(items []dto.OrderItemInput) []service.OrderItemInput {
	if items == nil {
		return nil
	}
	out := make([]service.OrderItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, service.OrderItemInput{DishID: item.DishID, Quantity: item.Quantity, Note: item.Note})
	}
	return out
}
