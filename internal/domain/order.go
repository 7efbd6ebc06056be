package domain

import "math"

// OrderStatus enumerates the client-side order lifecycle.
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderSent      OrderStatus = "sent"
	OrderInKitchen OrderStatus = "in_kitchen"
	OrderServed    OrderStatus = "served"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderDraft, OrderSent, OrderInKitchen, OrderServed, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Order is a table's order. Total is authoritative from the server.
type Order struct {
	ID       string
	TableID  string
	Status   OrderStatus
	Subtotal float64
	Tax      float64
	Discount float64
	Total    float64
	Notes    string
	Items    []OrderItem
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID           string
	MenuItemID   string
	MenuItemName string
	Quantity     int
	Price        float64
	Note         string
}

// LineTotal is quantity times price.
func (i OrderItem) LineTotal() float64 {
	if i.Quantity <= 0 {
		return 0
	}
	return float64(i.Quantity) * i.Price
}

// Recalculate recomputes Subtotal and Tax from the items for display.
func (o *Order) Recalculate(taxRate float64) {
	var subtotal float64
	for _, item := range o.Items {
		subtotal += item.LineTotal()
	}
	o.Subtotal = roundCents(subtotal)
	o.Tax = roundCents(subtotal * taxRate)
}

// Clone returns a deep copy safe to hand out of a cache.
func (o Order) Clone() Order {
	if o.Items != nil {
		items := make([]OrderItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}

func roundCents(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

// OrderPatch is a partial change to an order. Nil fields are left untouched.
type OrderPatch struct {
	Status *OrderStatus
	Notes  *string
	Items  []OrderItem
}

// Empty reports whether the patch changes nothing.
func (p OrderPatch) Empty() bool {
	return p.Status == nil && p.Notes == nil && p.Items == nil
}

// Apply writes the patch onto o.
func (p OrderPatch) Apply(o *Order) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Notes != nil {
		o.Notes = *p.Notes
	}
	if p.Items != nil {
		items := make([]OrderItem, len(p.Items))
		copy(items, p.Items)
		o.Items = items
	}
}
