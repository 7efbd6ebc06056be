package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/tablepos/internal/config"
	"github.com/spec-kit/tablepos/internal/observability"
	"github.com/spec-kit/tablepos/pkg/apperrors"
)

func main() {
	opts := commandOptions{}
	cmd := flag.String("cmd", "tables", "Command: login|logout|status|whoami|tables|table-create|table-status|orders|order-create|order-status|menu|dish")
	serverFlag := flag.String("server", "", "Override backend base URL (e.g. http://localhost:3000/api)")
	flag.StringVar(&opts.Username, "username", "", "Username (login)")
	flag.StringVar(&opts.Password, "password", "", "Password (login)")
	flag.StringVar(&opts.ID, "id", "", "Table, order or dish id")
	flag.StringVar(&opts.Status, "status", "", "Table or order status")
	flag.StringVar(&opts.TableID, "table", "", "Table id (orders, order-create)")
	flag.StringVar(&opts.Number, "number", "", "Table number (table-create)")
	flag.IntVar(&opts.Seats, "seats", 0, "Seats (table-create)")
	flag.StringVar(&opts.Location, "location", "", "Location (table-create)")
	flag.StringVar(&opts.Items, "items", "", "Order lines as dishId:qty[:note], comma separated")
	flag.StringVar(&opts.Notes, "notes", "", "Order notes")
	flag.IntVar(&opts.Page, "page", 0, "Page (orders, menu)")
	flag.IntVar(&opts.Limit, "limit", 0, "Page size (orders, menu)")
	flag.BoolVar(&opts.ActiveOnly, "active", false, "Only active categories (menu)")
	flag.BoolVar(&opts.Local, "local", false, "Apply order-status locally without calling the server")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *serverFlag != "" {
		resolved, err := config.ResolveBaseURL(*serverFlag, cfg.API.Platform)
		if err != nil {
			log.Fatalf("invalid --server: %v", err)
		}
		cfg.API = cfg.API.WithBaseURL(resolved)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	os.Exit(execute(cfg, logger, *cmd, opts))
}

func execute(cfg *config.Config, logger *zap.Logger, cmd string, opts commandOptions) int {
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	app, err := newPOSApp(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer app.Close()

	if err := run(ctx, app, cmd, opts, os.Stdout); err != nil {
		msg := apperrors.UserMessage(err)
		if errors.Is(err, errUsage) {
			msg = err.Error()
		}
		fmt.Fprintln(os.Stderr, "Error:", msg)
		logger.Debug("command failed", zap.String("command", cmd), zap.Error(err))
		return 1
	}
	return 0
}
