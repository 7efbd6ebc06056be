package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tablepos/internal/api/dto"
	"github.com/spec-kit/tablepos/internal/service"
)

// TablesHandler exposes the /tables endpoints.
type TablesHandler struct {
	tables *service.TableService
}

// NewTablesHandler constructs handler.
func NewTablesHandler(tables *service.TableService) *TablesHandler {
	return &TablesHandler{tables: tables}
}

// ByLocation handles GET /tables/by-location.
func (h *TablesHandler) ByLocation(c *fiber.Ctx) error {
	groups, err := h.tables.ByLocation(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.TableGroupWire, 0, len(groups))
	for _, g := range groups {
		wire := dto.TableGroupWire{Location: g.Location, Tables: make([]dto.TableWire, 0, len(g.Tables))}
		for _, t := range g.Tables {
			wire.Tables = append(wire.Tables, presentTable(t))
		}
		out = append(out, wire)
	}
	return c.JSON(fiber.Map{"data": out})
}

// Create handles POST /tables.
func (h *TablesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTableRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	table, err := h.tables.Create(c.UserContext(), service.TableCreateInput{
		TableNumber: req.TableNumber,
		Seats:       req.Seats,
		Location:    req.Location,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": presentTable(*table)})
}

// Update handles PUT /tables/:id.
func (h *TablesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTableRequest
	if err := c.BodyParser(&req); err != nil || req.Status == nil {
		return fiber.NewError(fiber.StatusBadRequest, "status required")
	}
	table, err := h.tables.UpdateStatus(c.UserContext(), c.Params("id"), *req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": presentTable(*table)})
}
