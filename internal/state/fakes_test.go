package state

import (
	"context"

	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/internal/remote"
)

type staticAuth struct {
	token string
}

func (a staticAuth) Authorized(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	return fn(ctx, a.token)
}

type fakeTables struct {
	list   func() ([]domain.TableGroup, error)
	create func(remote.TableInput) (domain.Table, error)
	update func(id string, status domain.TableStatus) (domain.Table, error)
}

func (f *fakeTables) ListByLocation(context.Context, string) ([]domain.TableGroup, error) {
	return f.list()
}

func (f *fakeTables) Create(_ context.Context, _ string, input remote.TableInput) (domain.Table, error) {
	return f.create(input)
}

func (f *fakeTables) UpdateStatus(_ context.Context, _ string, id string, status domain.TableStatus) (domain.Table, error) {
	return f.update(id, status)
}

type fakeOrders struct {
	list    func(remote.OrderFilter) (remote.OrderPage, error)
	byTable func(tableID string) ([]domain.Order, error)
	create  func(remote.OrderInput) (domain.Order, error)
	update  func(id string, patch domain.OrderPatch) (domain.Order, error)
}

func (f *fakeOrders) List(_ context.Context, _ string, filter remote.OrderFilter) (remote.OrderPage, error) {
	return f.list(filter)
}

func (f *fakeOrders) ListByTable(_ context.Context, _ string, tableID string) ([]domain.Order, error) {
	return f.byTable(tableID)
}

func (f *fakeOrders) Create(_ context.Context, _ string, input remote.OrderInput) (domain.Order, error) {
	return f.create(input)
}

func (f *fakeOrders) Update(_ context.Context, _ string, id string, patch domain.OrderPatch) (domain.Order, error) {
	return f.update(id, patch)
}

func page(orders ...domain.Order) remote.OrderPage {
	return remote.OrderPage{Orders: orders, Total: len(orders), Page: 1, Limit: 20}
}
