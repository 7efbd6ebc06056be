// Package state holds the client's cached views of server entities. Each
// context replaces its collection wholesale on refresh and exposes a single
// loading flag.
package state

import (
	"context"
	"sync/atomic"

	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/internal/remote"
)

// Authorizer runs a call with a bearer token. session.Manager satisfies it.
type Authorizer interface {
	Authorized(ctx context.Context, fn func(ctx context.Context, token string) error) error
}

// TableSource is the remote side of the table context.
type TableSource interface {
	ListByLocation(ctx context.Context, token string) ([]domain.TableGroup, error)
	Create(ctx context.Context, token string, input remote.TableInput) (domain.Table, error)
	UpdateStatus(ctx context.Context, token, id string, status domain.TableStatus) (domain.Table, error)
}

// OrderSource is the remote side of the order context.
type OrderSource interface {
	List(ctx context.Context, token string, filter remote.OrderFilter) (remote.OrderPage, error)
	ListByTable(ctx context.Context, token, tableID string) ([]domain.Order, error)
	Create(ctx context.Context, token string, input remote.OrderInput) (domain.Order, error)
	Update(ctx context.Context, token, id string, patch domain.OrderPatch) (domain.Order, error)
}

// loading counts in-flight network operations.
type loading struct {
	n atomic.Int32
}

// begin marks an operation in flight. Call the returned func with defer.
func (l *loading) begin() func() {
	l.n.Add(1)
	return func() { l.n.Add(-1) }
}

func (l *loading) active() bool {
	return l.n.Load() > 0
}
