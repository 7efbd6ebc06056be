package handlers

import (
	"github.com/spec-kit/tablepos/internal/api/dto"
	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/internal/repository"
	"github.com/spec-kit/tablepos/internal/service"
)

func presentUser(u domain.User) dto.UserWire {
	active := u.IsActive
	return dto.UserWire{
		ID:       dto.ID(u.ID),
		Username: u.Username,
		FullName: u.FullName,
		Role:     string(u.Role),
		IsActive: &active,
	}
}

func presentTable(t domain.Table) dto.TableWire {
	var current *dto.ID
	if t.CurrentOrderID != nil {
		id := dto.ID(*t.CurrentOrderID)
		current = &id
	}
	return dto.TableWire{
		ID:             dto.ID(t.ID),
		TableNumber:    dto.ID(t.TableNumber),
		Seats:          dto.Number(t.Seats),
		Location:       t.Location,
		Status:         string(t.Status),
		CurrentOrderID: current,
	}
}

func presentOrder(o repository.OrderRecord, totals service.OrderTotals) dto.OrderWire {
	items := make([]dto.OrderItemWire, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, dto.OrderItemWire{
			ID:       dto.ID(item.ID),
			DishID:   dto.ID(item.MenuItemID),
			DishName: item.MenuItemName,
			Quantity: dto.Number(item.Quantity),
			Price:    dto.Amount(item.Price),
			Note:     item.Note,
		})
	}
	return dto.OrderWire{
		ID:         dto.ID(o.ID),
		TableID:    dto.ID(o.TableID),
		Status:     o.Status,
		Subtotal:   dto.Amount(totals.Subtotal),
		Tax:        dto.Amount(totals.Tax),
		Discount:   dto.Amount(o.Discount),
		Total:      dto.Amount(totals.Total),
		Notes:      o.Notes,
		OrderItems: items,
	}
}

func presentDish(d domain.MenuItem) dto.DishWire {
	available := d.IsAvailable
	return dto.DishWire{
		ID:           dto.ID(d.ID),
		Name:         d.Name,
		Description:  d.Description,
		Price:        dto.Amount(d.Price),
		CategoryName: d.Category,
		IsAvailable:  &available,
		PrepTime:     dto.Number(d.PrepTimeMinutes),
		ImageURL:     d.ImageURL,
	}
}

func presentCategory(c domain.Category) dto.CategoryWire {
	active := c.IsActive
	dishes := make([]dto.DishWire, 0, len(c.Items))
	for _, d := range c.Items {
		dishes = append(dishes, presentDish(d))
	}
	return dto.CategoryWire{ID: dto.ID(c.ID), Name: c.Name, IsActive: &active, Dishes: dishes}
}
