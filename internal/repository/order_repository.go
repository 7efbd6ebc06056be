package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/tablepos/internal/domain"
)

// OrderRecord is a stored order. Status holds the backend vocabulary
// (pending, sent, preparing, served, completed, cancelled).
type OrderRecord struct {
	ID        string
	TableID   string
	Status    string
	Discount  float64
	Notes     string
	Items     []domain.OrderItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderFilter captures list parameters.
type OrderFilter struct {
	Status  string
	TableID string
	Limit   int
	Offset  int
}

// OrderRepository encapsulates order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *OrderRecord) error
	Update(ctx context.Context, order *OrderRecord) error
	GetByID(ctx context.Context, id string) (*OrderRecord, error)
	List(ctx context.Context, filter OrderFilter) ([]OrderRecord, int, error)
}

type orderRepository struct {
	mu   sync.RWMutex
	byID map[string]OrderRecord
	seq  map[string]int64
	next int64
}

// NewOrderRepository returns an in-memory implementation.
func NewOrderRepository() OrderRepository {
	return &orderRepository{byID: make(map[string]OrderRecord), seq: make(map[string]int64)}
}

func (r *orderRepository) Create(_ context.Context, order *OrderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	order.ID = uuid.NewString()
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.NewString()
		}
	}
	r.byID[order.ID] = cloneOrder(*order)
	r.next++
	r.seq[order.ID] = r.next
	return nil
}

func (r *orderRepository) Update(_ context.Context, order *OrderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[order.ID]; !ok {
		return ErrNotFound
	}
	order.UpdatedAt = time.Now().UTC()
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.NewString()
		}
	}
	r.byID[order.ID] = cloneOrder(*order)
	return nil
}

func (r *orderRepository) GetByID(_ context.Context, id string) (*OrderRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneOrder(order)
	return &out, nil
}

// List returns matching orders oldest first, with the total before paging.
func (r *orderRepository) List(_ context.Context, filter OrderFilter) ([]OrderRecord, int, error) {
	r.mu.RLock()
	matched := make([]OrderRecord, 0, len(r.byID))
	for _, order := range r.byID {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.TableID != "" && order.TableID != filter.TableID {
			continue
		}
		matched = append(matched, cloneOrder(order))
	}
	sort.Slice(matched, func(i, j int) bool {
		return r.seq[matched[i].ID] < r.seq[matched[j].ID]
	})
	r.mu.RUnlock()

	total := len(matched)
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if filter.Limit > 0 && offset+filter.Limit < total {
		end = offset + filter.Limit
	}
	return matched[offset:end], total, nil
}

func cloneOrder(o OrderRecord) OrderRecord {
	if o.Items != nil {
		items := make([]domain.OrderItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}
