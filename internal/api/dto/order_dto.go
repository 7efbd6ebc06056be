package dto

// OrderWire is the backend's order shape.
type OrderWire struct {
	ID         ID              `json:"id"`
	TableID    ID              `json:"tableId"`
	Status     string          `json:"status"`
	Subtotal   Amount          `json:"subtotal"`
	Tax        Amount          `json:"tax"`
	Discount   Amount          `json:"discount"`
	Total      Amount          `json:"total"`
	Notes      string          `json:"notes"`
	Items      []OrderItemWire `json:"items,omitempty"`
	OrderItems []OrderItemWire `json:"orderItems,omitempty"`
}

// OrderItemWire is one line of an order on the wire.
type OrderItemWire struct {
	ID         ID        `json:"id"`
	DishID     ID        `json:"dishId"`
	MenuItemID ID        `json:"menuItemId,omitempty"`
	DishName   string    `json:"dishName,omitempty"`
	Dish       *DishWire `json:"dish,omitempty"`
	Quantity   Number    `json:"quantity"`
	Price      Amount    `json:"price"`
	Note       string    `json:"note,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

// PageMeta describes a paged listing.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// OrderPage is returned by GET /orders.
type OrderPage struct {
	Data []OrderWire `json:"data"`
	Meta PageMeta    `json:"meta"`
}

// OrderItemInput is an item sent when creating or replacing order lines.
type OrderItemInput struct {
	DishID   string `json:"dishId"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note,omitempty"`
}

// CreateOrderRequest payload for POST /orders.
type CreateOrderRequest struct {
	TableID string           `json:"tableId"`
	Notes   string           `json:"notes,omitempty"`
	Items   []OrderItemInput `json:"items"`
}

// UpdateOrderRequest payload for PUT /orders/{id}.
type UpdateOrderRequest struct {
	Status *string          `json:"status,omitempty"`
	Notes  *string          `json:"notes,omitempty"`
	Items  []OrderItemInput `json:"items,omitempty"`
}
