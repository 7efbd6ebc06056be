package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/internal/repository"
)

// Backend order statuses.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusPreparing = "preparing"
	StatusInKitchen = "in_kitchen"
	StatusServed    = "served"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var knownStatuses = map[string]bool{
	StatusPending: true, StatusSent: true, StatusPreparing: true, StatusInKitchen: true,
	StatusServed: true, StatusCompleted: true, StatusCancelled: true,
}

// OrderItemInput is one requested line.
type OrderItemInput struct {
	DishID   string
	Quantity int
	Note     string
}

// OrderCreateInput describes a new order.
type OrderCreateInput struct {
	TableID string
	Notes   string
	Items   []OrderItemInput
}

// OrderUpdateInput is a partial change. Nil fields are untouched.
type OrderUpdateInput struct {
	Status *string
	Notes  *string
	Items  []OrderItemInput
}

// OrderTotals are computed by the server.
type OrderTotals struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// OrderService handles order workflows and keeps tables in step.
type OrderService struct {
	orders  repository.OrderRepository
	tables  repository.TableRepository
	menu    repository.MenuRepository
	taxRate float64
}

// OrderDependencies bundles repositories for the order service.
type OrderDependencies struct {
	OrderRepo repository.OrderRepository
	TableRepo repository.TableRepository
	MenuRepo  repository.MenuRepository
	TaxRate   float64
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{orders: deps.OrderRepo, tables: deps.TableRepo, menu: deps.MenuRepo, taxRate: deps.TaxRate}
}

// Create places an order and marks its table occupied.
func (s *OrderService) Create(ctx context.Context, input OrderCreateInput) (*repository.OrderRecord, error) {
	table, err := s.tables.GetByID(ctx, input.TableID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("table %q does not exist", input.TableID)
		}
		return nil, err
	}
	items, err := s.resolveItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	order := &repository.OrderRecord{
		TableID: table.ID,
		Status:  StatusPending,
		Notes:   strings.TrimSpace(input.Notes),
		Items:   items,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	table.Status = domain.TableOccupied
	table.CurrentOrderID = &order.ID
	if err := s.tables.Update(ctx, table); err != nil {
		return nil, err
	}
	return order, nil
}

// Update applies a partial change. Completing or cancelling frees the table.
func (s *OrderService) Update(ctx context.Context, id string, input OrderUpdateInput) (*repository.OrderRecord, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if !knownStatuses[status] {
			return nil, invalid("unknown order status %q", *input.Status)
		}
		if status == StatusInKitchen {
			status = StatusPreparing
		}
		order.Status = status
	}
	if input.Notes != nil {
		order.Notes = strings.TrimSpace(*input.Notes)
	}
	if input.Items != nil {
		items, err := s.resolveItems(ctx, input.Items)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	if order.Status == StatusCompleted || order.Status == StatusCancelled {
		if err := s.releaseTable(ctx, order); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// List returns a page of orders and the unpaged total.
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]repository.OrderRecord, int, error) {
	if filter.Status != "" {
		filter.Status = strings.ToLower(filter.Status)
		if filter.Status == StatusInKitchen {
			filter.Status = StatusPreparing
		}
	}
	return s.orders.List(ctx, filter)
}

// ListByTable returns every order of a table.
func (s *OrderService) ListByTable(ctx context.Context, tableID string) ([]repository.OrderRecord, error) {
	if _, err := s.tables.GetByID(ctx, tableID); err != nil {
		return nil, err
	}
	orders, _, err := s.orders.List(ctx, repository.OrderFilter{TableID: tableID})
	return orders, err
}

// Totals computes subtotal, tax and total for an order.
func (s *OrderService) Totals(order repository.OrderRecord) OrderTotals {
	var subtotal float64
	for _, item := range order.Items {
		subtotal += item.LineTotal()
	}
	tax := subtotal * s.taxRate
	total := subtotal + tax - order.Discount
	if total < 0 {
		total = 0
	}
	return OrderTotals{Subtotal: cents(subtotal), Tax: cents(tax), Total: cents(total)}
}

func (s *OrderService) resolveItems(ctx context.Context, inputs []OrderItemInput) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, invalid("quantity for dish %q must be positive", in.DishID)
		}
		dish, err := s.menu.Dish(ctx, in.DishID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, invalid("dish %q does not exist", in.DishID)
			}
			return nil, err
		}
		if !dish.IsAvailable {
			return nil, invalid("dish %q is not available", dish.Name)
		}
		items = append(items, domain.OrderItem{
			MenuItemID:   dish.ID,
			MenuItemName: dish.Name,
			Quantity:     in.Quantity,
			Price:        dish.Price,
			Note:         strings.TrimSpace(in.Note),
		})
	}
	return items, nil
}

func (s *OrderService) releaseTable(ctx context.Context, order *repository.OrderRecord) error {
	table, err := s.tables.GetByID(ctx, order.TableID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if table.CurrentOrderID == nil || *table.CurrentOrderID != order.ID {
		return nil
	}
	table.CurrentOrderID = nil
	if order.Status == StatusCompleted {
		table.Status = domain.TableDirty
	} else {
		table.Status = domain.TableAvailable
	}
	return s.tables.Update(ctx, table)
}

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}
