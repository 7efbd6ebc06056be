package dto

// DishWire is the backend's dish shape.
type DishWire struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Price        Amount `json:"price"`
	CategoryID   ID     `json:"categoryId,omitempty"`
	CategoryName string `json:"categoryName,omitempty"`
	IsAvailable  *bool  `json:"isAvailable,omitempty"`
	PrepTime     Number `json:"prepTime,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
}

// CategoryWire is one category of GET /food/categories, with nested dishes.
type CategoryWire struct {
	ID       ID         `json:"id"`
	Name     string     `json:"name"`
	IsActive *bool      `json:"isActive,omitempty"`
	Dishes   []DishWire `json:"dishes"`
}
