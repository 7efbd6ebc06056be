package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/internal/events"
	"github.com/spec-kit/tablepos/internal/fixtures"
	"github.com/spec-kit/tablepos/internal/remote"
	"github.com/spec-kit/tablepos/pkg/apperrors"
)

// Tables caches the floor plan.
type Tables struct {
	source     TableSource
	auth       Authorizer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	loading    loading

	mu       sync.RWMutex
	tables   []domain.Table
	fallback bool // tables holds the bundled floor plan, not server rows
	stale    bool
	lastErr  error
}

// NewTables builds the context. dispatcher and logger may be nil.
func NewTables(source TableSource, auth Authorizer, dispatcher events.Dispatcher, logger *zap.Logger) *Tables {
	if dispatcher == nil {
		dispatcher = events.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tables{source: source, auth: auth, dispatcher: dispatcher, logger: logger}
}

// Refresh replaces the collection with the server's tables. On failure the
// bundled demo floor plan is shown, the context is marked stale and the
// error is returned.
func (t *Tables) Refresh(ctx context.Context) error {
	defer t.loading.begin()()

	var groups []domain.TableGroup
	err := t.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		groups, err = t.source.ListByLocation(ctx, token)
		return err
	})
	if err != nil {
		fallback := fixtures.Tables()
		t.logger.Warn("table refresh failed, falling back to bundled tables",
			zap.Error(err), zap.Int("tables", len(fallback)))

		t.mu.Lock()
		t.tables = fallback
		t.fallback = true
		t.stale = true
		t.lastErr = err
		t.mu.Unlock()

		t.publish(ctx, events.New(events.EventTablesRefreshed, "", events.CollectionRefreshedPayload{
			Count: len(fallback),
			Stale: true,
			Error: apperrors.UserMessage(err),
		}))
		return err
	}

	var tables []domain.Table
	for _, g := range groups {
		for _, table := range g.Tables {
			if !table.Consistent() {
				t.logger.Debug("table status and current order disagree",
					zap.String("table_id", table.ID), zap.String("status", string(table.Status)))
			}
			tables = append(tables, table)
		}
	}

	t.mu.Lock()
	t.tables = tables
	t.fallback = false
	t.stale = false
	t.lastErr = nil
	t.mu.Unlock()

	t.publish(ctx, events.New(events.EventTablesRefreshed, "", events.CollectionRefreshedPayload{Count: len(tables)}))
	return nil
}

// Create adds a table on the server and appends the server's copy.
func (t *Tables) Create(ctx context.Context, input remote.TableInput) (domain.Table, error) {
	defer t.loading.begin()()

	var table domain.Table
	err := t.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		table, err = t.source.Create(ctx, token, input)
		return err
	})
	if err != nil {
		return domain.Table{}, err
	}

	t.mu.Lock()
	t.dropFallback()
	t.tables = append(t.tables, table)
	t.mu.Unlock()

	t.publish(ctx, events.New(events.EventTableCreated, table.ID, tableChanged(table)))
	return cloneTable(table), nil
}

// SetStatus changes a table's status on the server and replaces the local copy.
func (t *Tables) SetStatus(ctx context.Context, id string, status domain.TableStatus) (domain.Table, error) {
	defer t.loading.begin()()

	var table domain.Table
	err := t.auth.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		table, err = t.source.UpdateStatus(ctx, token, id, status)
		return err
	})
	if err != nil {
		return domain.Table{}, err
	}

	t.mu.Lock()
	t.dropFallback()
	replaced := false
	for i := range t.tables {
		if t.tables[i].ID == table.ID {
			t.tables[i] = table
			replaced = true
			break
		}
	}
	if !replaced {
		t.tables = append(t.tables, table)
	}
	t.mu.Unlock()

	t.publish(ctx, events.New(events.EventTableUpdated, table.ID, tableChanged(table)))
	return cloneTable(table), nil
}

// List returns a copy of the cached tables.
func (t *Tables) List() []domain.Table {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Table, len(t.tables))
	for i, table := range t.tables {
		out[i] = cloneTable(table)
	}
	return out
}

// Groups returns the cached tables grouped by location in first-seen order.
func (t *Tables) Groups() []domain.TableGroup {
	var groups []domain.TableGroup
	index := map[string]int{}
	for _, table := range t.List() {
		i, ok := index[table.Location]
		if !ok {
			i = len(groups)
			index[table.Location] = i
			groups = append(groups, domain.TableGroup{Location: table.Location})
		}
		groups[i].Tables = append(groups[i].Tables, table)
	}
	return groups
}

// Get returns one cached table.
func (t *Tables) Get(id string) (domain.Table, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, table := range t.tables {
		if table.ID == id {
			return cloneTable(table), true
		}
	}
	return domain.Table{}, false
}

// Loading reports whether a network operation is in flight.
func (t *Tables) Loading() bool {
	return t.loading.active()
}

// Stale reports whether the last refresh failed.
func (t *Tables) Stale() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stale
}

// LastError returns the error of the last failed refresh.
func (t *Tables) LastError() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastErr
}

// dropFallback empties the bundled rows so server rows are never mixed with
// them. The context stays stale until a refresh succeeds. Callers hold mu.
func (t *Tables) dropFallback() {
	if t.fallback {
		t.tables = nil
		t.fallback = false
	}
}

func (t *Tables) publish(ctx context.Context, event events.Event) {
	if err := t.dispatcher.Publish(ctx, event); err != nil {
		t.logger.Debug("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func tableChanged(table domain.Table) events.TableChangedPayload {
	return events.TableChangedPayload{
		TableNumber:    table.TableNumber,
		Location:       table.Location,
		Status:         table.Status,
		CurrentOrderID: table.CurrentOrderID,
	}
}

func cloneTable(t domain.Table) domain.Table {
	if t.CurrentOrderID != nil {
		id := *t.CurrentOrderID
		t.CurrentOrderID = &id
	}
	return t
}
