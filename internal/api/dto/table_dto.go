package dto

// TableWire is the backend's table shape.
type TableWire struct {
	ID             ID     `json:"id"`
	TableNumber    ID     `json:"tableNumber"`
	Seats          Number `json:"seats"`
	Capacity       Number `json:"capacity,omitempty"`
	Location       string `json:"location"`
	Status         string `json:"status"`
	CurrentOrderID *ID    `json:"currentOrderId"`
}

// TableGroupWire is one entry of GET /tables/by-location.
type TableGroupWire struct {
	Location string      `json:"location"`
	Tables   []TableWire `json:"tables"`
}

// CreateTableRequest payload for POST /tables.
type CreateTableRequest struct {
	TableNumber string `json:"tableNumber"`
	Seats       int    `json:"seats"`
	Location    string `json:"location"`
	Status      string `json:"status,omitempty"`
}

// UpdateTableRequest payload for PUT /tables/{id}.
type UpdateTableRequest struct {
	Status         *string `json:"status,omitempty"`
	CurrentOrderID *string `json:"currentOrderId,omitempty"`
}
