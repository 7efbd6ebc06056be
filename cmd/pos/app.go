package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/tablepos/internal/config"
	"github.com/spec-kit/tablepos/internal/events"
	"github.com/spec-kit/tablepos/internal/observability"
	"github.com/spec-kit/tablepos/internal/remote"
	"github.com/spec-kit/tablepos/internal/session"
	"github.com/spec-kit/tablepos/internal/state"
	"github.com/spec-kit/tablepos/internal/tokenstore"
)

// posApp is the wired client core: session, contexts and the food service.
type posApp struct {
	logger      *zap.Logger
	store       *tokenstore.Store
	storeDriver string
	session     *session.Manager
	tables      *state.Tables
	orders      *state.Orders
	food        *remote.FoodService
	closers     []func()
}

func newPOSApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, clientOpts ...remote.Option) (*posApp, error) {
	app := &posApp{logger: logger}

	store, closeStore, err := tokenstore.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}
	app.closers = append(app.closers, closeStore)
	app.store, app.storeDriver = store, cfg.Store.Driver

	clientOpts = append([]remote.Option{
		remote.WithLogger(logger),
		remote.WithMetrics(observability.NewMetrics()),
	}, clientOpts...)
	client := remote.NewClient(cfg.API, clientOpts...)

	app.session = session.New(store, remote.NewAuthService(client), logger,
		session.WithRefreshSkew(cfg.API.RefreshSkew()))
	if err := app.session.Restore(ctx); err != nil {
		logger.Warn("continuing without a restored session", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	var bridge *events.AMQPBridge
	if cfg.AMQP.URL != "" {
		conn, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logger.Warn("event bridge disabled", zap.Error(err))
		} else {
			app.closers = append(app.closers, conn.Close)
			bridge = events.NewAMQPBridge(conn.Channel(), cfg.AMQP.Exchange, cfg.App.Name)
		}
	}
	events.NewNotifier(dispatcher, logger, bridge).RegisterHandlers()

	app.tables = state.NewTables(remote.NewTableService(client), app.session, dispatcher, logger)
	app.orders = state.NewOrders(remote.NewOrderService(client, cfg.API.TaxRate), app.session, dispatcher, logger, cfg.API.TaxRate)
	app.food = remote.NewFoodService(client)
	return app, nil
}

func (a *posApp) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
