package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/tablepos/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTablesRefreshed EventType = "tables_refreshed"
	EventTableCreated    EventType = "table_created"
	EventTableUpdated    EventType = "table_updated"
	EventOrdersRefreshed EventType = "orders_refreshed"
	EventOrderCreated    EventType = "order_created"
	EventOrderUpdated    EventType = "order_updated"
)

// AllTypes lists every event type in publication order of the lifecycle.
var AllTypes = []EventType{
	EventTablesRefreshed,
	EventTableCreated,
	EventTableUpdated,
	EventOrdersRefreshed,
	EventOrderCreated,
	EventOrderUpdated,
}

// Event represents a state change in one of the entity contexts.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, entityID string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// CollectionRefreshedPayload payload.
type CollectionRefreshedPayload struct {
	Count   int    `json:"count"`
	Stale   bool   `json:"stale"`
	TableID string `json:"table_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TableChangedPayload payload.
type TableChangedPayload struct {
	TableNumber    string             `json:"table_number"`
	Location       string             `json:"location"`
	Status         domain.TableStatus `json:"status"`
	CurrentOrderID *string            `json:"current_order_id,omitempty"`
}

// OrderChangedPayload payload.
type OrderChangedPayload struct {
	TableID string             `json:"table_id"`
	Status  domain.OrderStatus `json:"status"`
	Total   float64            `json:"total"`
	Items   int                `json:"items"`
	// Local is set for optimistic changes the server has not seen.
	Local bool `json:"local"`
}
