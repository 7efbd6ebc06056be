package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/spec-kit/tablepos/internal/domain"
)

// TableRepository encapsulates table persistence.
type TableRepository interface {
	Create(ctx context.Context, table *domain.Table) error
	Update(ctx context.Context, table *domain.Table) error
	GetByID(ctx context.Context, id string) (*domain.Table, error)
	List(ctx context.Context) ([]domain.Table, error)
}

type tableRepository struct {
	mu    sync.RWMutex
	byID  map[string]domain.Table
	order []string
}

// NewTableRepository returns an in-memory implementation.
func NewTableRepository() TableRepository {
	return &tableRepository{byID: make(map[string]domain.Table)}
}

func (r *tableRepository) Create(_ context.Context, table *domain.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if strings.EqualFold(r.byID[id].TableNumber, table.TableNumber) {
			return ErrDuplicate
		}
	}
	if table.ID == "" {
		table.ID = nextSerial(r.order)
	}
	r.byID[table.ID] = cloneTable(*table)
	r.order = append(r.order, table.ID)
	return nil
}

func (r *tableRepository) Update(_ context.Context, table *domain.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[table.ID]; !ok {
		return ErrNotFound
	}
	r.byID[table.ID] = cloneTable(*table)
	return nil
}

func (r *tableRepository) GetByID(_ context.Context, id string) (*domain.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneTable(table)
	return &out, nil
}

func (r *tableRepository) List(_ context.Context) ([]domain.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Table, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneTable(r.byID[id]))
	}
	return out, nil
}

func cloneTable(t domain.Table) domain.Table {
	if t.CurrentOrderID != nil {
		id := *t.CurrentOrderID
		t.CurrentOrderID = &id
	}
	return t
}
