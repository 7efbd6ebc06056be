package state

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/internal/events"
	"github.com/spec-kit/tablepos/internal/remote"
	"github.com/spec-kit/tablepos/pkg/apperrors"
)

// ErrNotFound is returned by a local update of an order that is not cached.
var ErrNotFound = errors.New("order not in cache")

// Update is a change to one order. It is either Local or Remote.
type Update interface {
	update()
}

// Local patches the cached order immediately without calling the server.
// The cache may disagree with the server until the next refresh.
type Local struct {
	Patch domain.OrderPatch
}

// Remote sends the patch to the server and caches the server's response.
type Remote struct {
	Patch domain.OrderPatch
}

func (Local) update()  {}
func (Remote) update() {}

// Orders caches a filtered list of orders.
type Orders struct {
	source     OrderSource
	auth       Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	taxRate    float64
	loading    loading

	mu      sync.RWMutex
	orders  []domain.Order
	total   int
	stale   bool
	lastErr error
}

// NewOrders builds the context. taxRate prices local item edits.
func NewOrders(source OrderSource, auth Authorizer, dispatcher events.Dispatcher, logger *zap.Logger, taxRate float64) *Orders {
	if dispatcher == nil {
		dispatcher = events.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orders{source: source, auth: auth, dispatcher: dispatcher, logger: logger, taxRate: taxRate}
}

// Refresh replaces the collection with one page of orders. On failure the
// collection is emptied and marked stale.
func (o *Orders) Refresh(ctx context.Context, filter remote.OrderFilter) error {
	defer o.loading.begin()()

	var page remote.OrderPage
	err := o.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		page, err = o.source.List(ctx, token, filter)
		return err
	})
	o.replace(ctx, page.Orders, page.Total, "", err)
	return err
}

// RefreshForTable replaces the collection with every order of one table.
func (o *Orders) RefreshForTable(ctx context.Context, tableID string) error {
	defer o.loading.begin()()

	var orders []domain.Order
	err := o.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		orders, err = o.source.ListByTable(ctx, token, tableID)
		return err
	})
	o.replace(ctx, orders, len(orders), tableID, err)
	return err
}

func (o *Orders) replace(ctx context.Context, orders []domain.Order, total int, tableID string, err error) {
	payload := events.CollectionRefreshedPayload{TableID: tableID}

	o.mu.Lock()
	if err != nil {
		o.logger.Warn("order refresh failed", zap.Error(err), zap.String("table_id", tableID))
		o.orders = nil
		o.total = 0
		o.stale = true
		o.lastErr = err
		payload.Stale = true
		payload.Error = apperrors.UserMessage(err)
	} else {
		o.orders = orders
		o.total = total
		o.stale = false
		o.lastErr = nil
		payload.Count = len(orders)
	}
	o.mu.Unlock()

	o.publish(ctx, events.New(events.EventOrdersRefreshed, "", payload))
}

// Create places an order on the server and appends the server's copy.
func (o *Orders) Create(ctx context.Context, input remote.OrderInput) (domain.Order, error) {
	defer o.loading.begin()()

	var order domain.Order
	err := o.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		order, err = o.source.Create(ctx, token, input)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}

	o.mu.Lock()
	o.orders = append(o.orders, order)
	o.total++
	o.mu.Unlock()

	o.publish(ctx, events.New(events.EventOrderCreated, order.ID, orderChanged(order, false)))
	return order.Clone(), nil
}

// Apply performs a Local or Remote update of one order.
func (o *Orders) Apply(ctx context.Context, id string, u Update) (domain.Order, error) {
	switch u := u.(type) {
	case Local:
		return o.applyLocal(ctx, id, u.Patch)
	case Remote:
		return o.applyRemote(ctx, id, u.Patch)
	default:
		return domain.Order{}, fmt.Errorf("unsupported update %T", u)
	}
}

func (o *Orders) applyLocal(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error) {
	o.mu.Lock()
	i := o.indexOf(id)
	if i < 0 {
		o.mu.Unlock()
		return domain.Order{}, ErrNotFound
	}
	order := o.orders[i].Clone()
	patch.Apply(&order)
	if patch.Items != nil {
		order.Recalculate(o.taxRate)
		order.Total = math.Max(0, math.Round((order.Subtotal+order.Tax-order.Discount)*100)/100)
	}
	o.orders[i] = order
	o.mu.Unlock()

	o.publish(ctx, events.New(events.EventOrderUpdated, order.ID, orderChanged(order, true)))
	return order.Clone(), nil
}

func (o *Orders) applyRemote(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error) {
	defer o.loading.begin()()

	var order domain.Order
	err := o.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		order, err = o.source.Update(ctx, token, id, patch)
		return err
	})
	if err != nil {
		return domain.Order{}, err
	}

	o.mu.Lock()
	if i := o.indexOf(order.ID); i >= 0 {
		o.orders[i] = order
	}
	o.mu.Unlock()

	o.publish(ctx, events.New(events.EventOrderUpdated, order.ID, orderChanged(order, false)))
	return order.Clone(), nil
}

// indexOf must be called with mu held.
func (o *Orders) indexOf(id string) int {
	for i := range o.orders {
		if o.orders[i].ID == id {
			return i
		}
	}
	return -1
}

// List returns a copy of the cached orders in server order.
func (o *Orders) List() []domain.Order {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]domain.Order, len(o.orders))
	for i, order := range o.orders {
		out[i] = order.Clone()
	}
	return out
}

// Get returns one cached order.
func (o *Orders) Get(id string) (domain.Order, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if i := o.indexOf(id); i >= 0 {
		return o.orders[i].Clone(), true
	}
	return domain.Order{}, false
}

// Total is the unpaged count reported with the last refresh.
func (o *Orders) Total() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.total
}

// Loading reports whether a network operation is in flight.
func (o *Orders) Loading() bool {
	return o.loading.active()
}

// Stale reports whether the last refresh failed.
func (o *Orders) Stale() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stale
}

// LastError returns the error of the last failed refresh.
func (o *Orders) LastError() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lastErr
}

func (o *Orders) publish(ctx context.Context, event events.Event) {
	if err := o.dispatcher.Publish(ctx, event); err != nil {
		o.logger.Debug("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func orderChanged(order domain.Order, local bool) events.OrderChangedPayload {
	return events.OrderChangedPayload{
		TableID: order.TableID,
		Status:  order.Status,
		Total:   order.Total,
		Items:   len(order.Items),
		Local:   local,
	}
}
