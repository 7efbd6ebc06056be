package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/tablepos/internal/api/http"
	"github.com/spec-kit/tablepos/internal/config"
	"github.com/spec-kit/tablepos/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := httptransport.NewDemoApp(ctx, cfg.Backend, httptransport.DemoOptions{
		Name:    cfg.App.Name,
		Version: cfg.App.Version,
		TaxRate: cfg.API.TaxRate,
		Metrics: observability.NewMetrics(),
	}, logger)
	if err != nil {
		logger.Fatal("failed to build demo backend", zap.Error(err))
	}

	go func() {
		logger.Info("demo backend listening", zap.String("addr", cfg.Backend.Addr()))
		if err := app.Listen(cfg.Backend.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
