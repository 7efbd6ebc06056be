package domain

import "strings"

// MenuItem is a dish that can be ordered.
type MenuItem struct {
	ID              string
	Name            string
	Description     string
	Price           float64
	Category        string
	IsAvailable     bool
	PrepTimeMinutes int
	ImageURL        string
}

// Category groups dishes on the menu.
type Category struct {
	ID       string
	Name     string
	IsActive bool
	Items    []MenuItem
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
