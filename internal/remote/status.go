package remote

import (
	"strings"

	"github.com/spec-kit/tablepos/internal/domain"
)

var orderStatusFromBackend = map[string]domain.OrderStatus{
	"pending":    domain.OrderDraft,
	"sent":       domain.OrderSent,
	"in_kitchen": domain.OrderInKitchen,
	"preparing":  domain.OrderInKitchen,
	"served":     domain.OrderServed,
	"completed":  domain.OrderCompleted,
	"cancelled":  domain.OrderCancelled,
}

// MapOrderStatus converts a backend order status to the client's. Unknown values become draft.
func MapOrderStatus(raw string) domain.OrderStatus {
	if status, ok := orderStatusFromBackend[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status
	}
	return domain.OrderDraft
}

// BackendOrderStatus converts a client order status to the value the backend expects.
func BackendOrderStatus(status domain.OrderStatus) string {
	if status == domain.OrderDraft {
		return "pending"
	}
	return string(status)
}
