package domain

// TableStatus enumerates dining table states.
type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
	TableDirty     TableStatus = "dirty"
)

// ParseTableStatus maps a backend value onto a TableStatus, defaulting to available.
func ParseTableStatus(raw string) TableStatus {
	switch s := TableStatus(normalize(raw)); s {
	case TableAvailable, TableOccupied, TableReserved, TableDirty:
		return s
	case "cleaning":
		return TableDirty
	default:
		return TableAvailable
	}
}

// Table is a dining table as last seen on the server.
type Table struct {
	ID             string
	TableNumber    string
	Seats          int
	Location       string
	Status         TableStatus
	CurrentOrderID *string
}

// Consistent reports whether CurrentOrderID is set exactly when the table is occupied.
func (t Table) Consistent() bool {
	return (t.CurrentOrderID != nil) == (t.Status == TableOccupied)
}

// TableGroup is the by-location view served by the backend.
type TableGroup struct {
	Location string
	Tables   []Table
}
