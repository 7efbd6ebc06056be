package remote

import (
	"strings"

	"github.com/spec-kit/tablepos/internal/api/dto"
	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/pkg/apperrors"
)

func toUser(w dto.UserWire) (domain.User, error) {
	if w.ID == "" {
		return domain.User{}, apperrors.NewValidationError("user", "id")
	}
	if w.Username == "" {
		return domain.User{}, apperrors.NewValidationError("user", "username")
	}
	fullName := w.FullName
	if fullName == "" {
		fullName = w.Name
	}
	return domain.User{
		ID:       w.ID.String(),
		Username: w.Username,
		FullName: fullName,
		Role:     domain.ParseRole(w.Role),
		IsActive: boolOr(w.IsActive, true),
	}, nil
}

func toTable(w dto.TableWire, groupLocation string) (domain.Table, error) {
	if w.ID == "" {
		return domain.Table{}, apperrors.NewValidationError("table", "id")
	}
	if w.TableNumber == "" {
		return domain.Table{}, apperrors.NewValidationError("table", "tableNumber")
	}
	seats := w.Seats.Int()
	if seats == 0 {
		seats = w.Capacity.Int()
	}
	location := w.Location
	if location == "" {
		location = groupLocation
	}
	var currentOrderID *string
	if w.CurrentOrderID != nil && *w.CurrentOrderID != "" {
		id := w.CurrentOrderID.String()
		currentOrderID = &id
	}
	return domain.Table{
		ID:             w.ID.String(),
		TableNumber:    w.TableNumber.String(),
		Seats:          seats,
		Location:       location,
		Status:         domain.ParseTableStatus(w.Status),
		CurrentOrderID: currentOrderID,
	}, nil
}

func toTableGroups(groups []dto.TableGroupWire) ([]domain.TableGroup, error) {
	out := make([]domain.TableGroup, 0, len(groups))
	for _, g := range groups {
		group := domain.TableGroup{Location: g.Location, Tables: make([]domain.Table, 0, len(g.Tables))}
		for _, w := range g.Tables {
			table, err := toTable(w, g.Location)
			if err != nil {
				return nil, err
			}
			group.Tables = append(group.Tables, table)
		}
		out = append(out, group)
	}
	return out, nil
}

func toOrder(w dto.OrderWire, taxRate float64) (domain.Order, error) {
	if w.ID == "" {
		return domain.Order{}, apperrors.NewValidationError("order", "id")
	}
	if w.TableID == "" {
		return domain.Order{}, apperrors.NewValidationError("order", "tableId")
	}

	wireItems := w.Items
	if len(wireItems) == 0 {
		wireItems = w.OrderItems
	}
	items := make([]domain.OrderItem, 0, len(wireItems))
	for _, wi := range wireItems {
		item, err := toOrderItem(wi)
		if err != nil {
			return domain.Order{}, err
		}
		items = append(items, item)
	}

	order := domain.Order{
		ID:       w.ID.String(),
		TableID:  w.TableID.String(),
		Status:   MapOrderStatus(w.Status),
		Subtotal: w.Subtotal.Float(),
		Tax:      w.Tax.Float(),
		Discount: w.Discount.Float(),
		Total:    w.Total.Float(),
		Notes:    w.Notes,
		Items:    items,
	}
	if len(items) > 0 {
		order.Recalculate(taxRate)
	}
	return order, nil
}

func toOrders(wires []dto.OrderWire, taxRate float64) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(wires))
	for _, w := range wires {
		order, err := toOrder(w, taxRate)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, nil
}

func toOrderItem(w dto.OrderItemWire) (domain.OrderItem, error) {
	menuItemID := w.DishID
	if menuItemID == "" {
		menuItemID = w.MenuItemID
	}
	name := w.DishName
	if w.Dish != nil {
		if menuItemID == "" {
			menuItemID = w.Dish.ID
		}
		if name == "" {
			name = w.Dish.Name
		}
	}
	if menuItemID == "" {
		return domain.OrderItem{}, apperrors.NewValidationError("order item", "menuItemId")
	}
	quantity := w.Quantity.Int()
	if quantity < 0 {
		quantity = 0
	}
	note := w.Note
	if note == "" {
		note = w.Notes
	}
	return domain.OrderItem{
		ID:           w.ID.String(),
		MenuItemID:   menuItemID.String(),
		MenuItemName: name,
		Quantity:     quantity,
		Price:        w.Price.Float(),
		Note:         note,
	}, nil
}

func toMenuItem(w dto.DishWire, category string) (domain.MenuItem, error) {
	if w.ID == "" {
		return domain.MenuItem{}, apperrors.NewValidationError("dish", "id")
	}
	if strings.TrimSpace(w.Name) == "" {
		return domain.MenuItem{}, apperrors.NewValidationError("dish", "name")
	}
	if w.CategoryName != "" {
		category = w.CategoryName
	}
	return domain.MenuItem{
		ID:              w.ID.String(),
		Name:            w.Name,
		Description:     w.Description,
		Price:           w.Price.Float(),
		Category:        category,
		IsAvailable:     boolOr(w.IsAvailable, true),
		PrepTimeMinutes: w.PrepTime.Int(),
		ImageURL:        w.ImageURL,
	}, nil
}

func toCategory(w dto.CategoryWire) (domain.Category, error) {
	if w.ID == "" {
		return domain.Category{}, apperrors.NewValidationError("category", "id")
	}
	if w.Name == "" {
		return domain.Category{}, apperrors.NewValidationError("category", "name")
	}
	items := make([]domain.MenuItem, 0, len(w.Dishes))
	for _, d := range w.Dishes {
		item, err := toMenuItem(d, w.Name)
		if err != nil {
			return domain.Category{}, err
		}
		items = append(items, item)
	}
	return domain.Category{
		ID:       w.ID.String(),
		Name:     w.Name,
		IsActive: boolOr(w.IsActive, true),
		Items:    items,
	}, nil
}

func toItemInputs(items []domain.OrderItem) []dto.OrderItemInput {
	if items == nil {
		return nil
	}
	out := make([]dto.OrderItemInput, 0, len(items))
	for _, item := range items {
		out = append(out, dto.OrderItemInput{DishID: item.MenuItemID, Quantity: item.Quantity, Note: item.Note})
	}
	return out
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
