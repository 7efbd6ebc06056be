package service

import (
	"context"
	"strings"

	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/internal/repository"
)

// TableCreateInput describes a table to add.
type TableCreateInput struct {
	TableNumber string
	Seats       int
	Location    string
	Status      string
}

// TableService manages the floor plan.
type TableService struct {
	tables repository.TableRepository
}

// NewTableService constructs the service.
func NewTableService(tables repository.TableRepository) *TableService {
	return &TableService{tables: tables}
}

// ByLocation groups tables by location in first-seen order.
func (s *TableService) ByLocation(ctx context.Context) ([]domain.TableGroup, error) {
	tables, err := s.tables.List(ctx)
	if err != nil {
		return nil, err
	}
	var groups []domain.TableGroup
	index := map[string]int{}
	for _, t := range tables {
		i, ok := index[t.Location]
		if !ok {
			i = len(groups)
			index[t.Location] = i
			groups = append(groups, domain.TableGroup{Location: t.Location})
		}
		groups[i].Tables = append(groups[i].Tables, t)
	}
	return groups, nil
}

// Create validates and stores a table.
func (s *TableService) Create(ctx context.Context, input TableCreateInput) (*domain.Table, error) {
	input.TableNumber = strings.TrimSpace(input.TableNumber)
	input.Location = strings.TrimSpace(input.Location)
	if input.TableNumber == "" {
		return nil, invalid("tableNumber is required")
	}
	if input.Seats <= 0 {
		return nil, invalid("seats must be positive")
	}
	if input.Location == "" {
		return nil, invalid("location is required")
	}
	status := domain.TableAvailable
	if input.Status != "" {
		parsed, err := parseTableStatus(input.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	table := &domain.Table{
		TableNumber: input.TableNumber,
		Seats:       input.Seats,
		Location:    input.Location,
		Status:      status,
	}
	if err := s.tables.Create(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

// UpdateStatus changes a table's status. Leaving occupied clears the current order.
func (s *TableService) UpdateStatus(ctx context.Context, id, rawStatus string) (*domain.Table, error) {
	status, err := parseTableStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	table, err := s.tables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	table.Status = status
	if status != domain.TableOccupied {
		table.CurrentOrderID = nil
	}
	if err := s.tables.Update(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

func parseTableStatus(raw string) (domain.TableStatus, error) {
	switch s := domain.TableStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case domain.TableAvailable, domain.TableOccupied, domain.TableReserved, domain.TableDirty:
		return s, nil
	default:
		return "", invalid("unknown table status %q", raw)
	}
}
