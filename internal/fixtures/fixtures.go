// Package fixtures holds the bundled demo dataset. The table context falls back
// to it when the backend is unreachable, and the demo backend seeds from it.
package fixtures

import "github.com/spec-kit/tablepos/internal/domain"

// DemoUser is a seeded account with its plaintext password.
type DemoUser struct {
	User     domain.User
	Password string
}

// Users returns the demo accounts.
func Users() []DemoUser {
	return []DemoUser{
		{User: domain.User{ID: "1", Username: "admin", FullName: "Ana Admin", Role: domain.RoleAdmin, IsActive: true}, Password: "admin123"},
		{User: domain.User{ID: "2", Username: "waiter", FullName: "Walter Waiter", Role: domain.RoleStaff, IsActive: true}, Password: "waiter123"},
		{User: domain.User{ID: "3", Username: "chef", FullName: "Carla Chef", Role: domain.RoleKitchen, IsActive: true}, Password: "chef123"},
		{User: domain.User{ID: "4", Username: "former", FullName: "Frank Former", Role: domain.RoleStaff, IsActive: false}, Password: "former123"},
	}
}

// Tables returns the demo floor plan. Every table starts available.
func Tables() []domain.Table {
	return []domain.Table{
		{ID: "1", TableNumber: "T1", Seats: 2, Location: "Main Hall", Status: domain.TableAvailable},
		{ID: "2", TableNumber: "T2", Seats: 4, Location: "Main Hall", Status: domain.TableAvailable},
		{ID: "3", TableNumber: "T3", Seats: 4, Location: "Main Hall", Status: domain.TableAvailable},
		{ID: "4", TableNumber: "P1", Seats: 6, Location: "Patio", Status: domain.TableAvailable},
		{ID: "5", TableNumber: "P2", Seats: 2, Location: "Patio", Status: domain.TableAvailable},
		{ID: "6", TableNumber: "B1", Seats: 8, Location: "Private Room", Status: domain.TableAvailable},
	}
}

// Menu returns the demo menu.
func Menu() []domain.Category {
	return []domain.Category{
		{ID: "1", Name: "Starters", IsActive: true, Items: []domain.MenuItem{
			{ID: "101", Name: "Garlic Bread", Description: "Toasted sourdough with garlic butter", Price: 5.5, IsAvailable: true, PrepTimeMinutes: 5},
			{ID: "102", Name: "Tomato Soup", Description: "Roasted tomato and basil", Price: 6.75, IsAvailable: true, PrepTimeMinutes: 8},
		}},
		{ID: "2", Name: "Mains", IsActive: true, Items: []domain.MenuItem{
			{ID: "201", Name: "Margherita Pizza", Description: "San Marzano tomato, mozzarella, basil", Price: 12, IsAvailable: true, PrepTimeMinutes: 15},
			{ID: "202", Name: "Grilled Salmon", Description: "With lemon butter and greens", Price: 18.5, IsAvailable: true, PrepTimeMinutes: 20},
			{ID: "203", Name: "Mushroom Risotto", Description: "Arborio rice, porcini, parmesan", Price: 14.25, IsAvailable: false, PrepTimeMinutes: 25},
		}},
		{ID: "3", Name: "Seasonal", IsActive: false, Items: []domain.MenuItem{
			{ID: "301", Name: "Pumpkin Pie", Price: 7, IsAvailable: true, PrepTimeMinutes: 5},
		}},
	}
}
