package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/internal/remote"
	"github.com/spec-kit/tablepos/internal/state"
	"github.com/spec-kit/tablepos/pkg/apperrors"
)

type commandOptions struct {
	Username   string
	Password   string
	ID         string
	Status     string
	TableID    string
	Number     string
	Seats      int
	Location   string
	Items      string
	Notes      string
	Page       int
	Limit      int
	ActiveOnly bool
	Local      bool
}

var errUsage = errors.New("usage")

func run(ctx context.Context, app *posApp, cmd string, opts commandOptions, out io.Writer) error {
	switch cmd {
	case "login":
		if opts.Username == "" || opts.Password == "" {
			return usage("--username and --password required")
		}
		s, err := app.session.Login(ctx, opts.Username, opts.Password)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Signed in as %s (%s)\n", s.User.FullName, s.User.Role)
		return nil

	case "logout":
		app.session.Logout(ctx)
		fmt.Fprintln(out, "Signed out")
		return nil

	case "status":
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		storeStatus := "ok"
		if err := app.store.Ping(pingCtx); err != nil {
			storeStatus = err.Error()
		}
		fmt.Fprintf(out, "token store (%s): %s\nsession: %s\n", app.storeDriver, storeStatus, app.session.State())
		return nil

	case "whoami":
		user, err := app.session.ReloadProfile(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", user.Username, user.FullName, user.Role)
		return nil

	case "tables":
		// a failed refresh still shows the bundled floor plan
		if err := app.tables.Refresh(ctx); err != nil {
			fmt.Fprintf(out, "! showing offline tables: %s\n", apperrors.UserMessage(err))
		}
		printTables(out, app.tables)
		return nil

	case "table-create":
		table, err := app.tables.Create(ctx, remote.TableInput{
			TableNumber: opts.Number,
			Seats:       opts.Seats,
			Location:    opts.Location,
			Status:      domain.TableStatus(opts.Status),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created table %s (id %s) in %s\n", table.TableNumber, table.ID, table.Location)
		return nil

	case "table-status":
		if opts.ID == "" || opts.Status == "" {
			return usage("--id and --status required")
		}
		table, err := app.tables.SetStatus(ctx, opts.ID, domain.ParseTableStatus(opts.Status))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Table %s is now %s\n", table.TableNumber, table.Status)
		return nil

	case "orders":
		var err error
		if opts.TableID != "" && opts.Status == "" {
			err = app.orders.RefreshForTable(ctx, opts.TableID)
		} else {
			err = app.orders.Refresh(ctx, remote.OrderFilter{
				Status:  orderStatusFlag(opts.Status),
				TableID: opts.TableID,
				Page:    opts.Page,
				Limit:   opts.Limit,
			})
		}
		if err != nil {
			fmt.Fprintf(out, "! orders unavailable: %s\n", apperrors.UserMessage(err))
		}
		printOrders(out, app.orders)
		return nil

	case "order-create":
		if opts.TableID == "" {
			return usage("--table required")
		}
		items, err := parseItems(opts.Items)
		if err != nil {
			return err
		}
		order, err := app.orders.Create(ctx, remote.OrderInput{TableID: opts.TableID, Notes: opts.Notes, Items: items})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created order %s for table %s, total %.2f\n", order.ID, order.TableID, order.Total)
		return nil

	case "order-status":
		if opts.ID == "" || opts.Status == "" {
			return usage("--id and --status required")
		}
		status := orderStatusFlag(opts.Status)
		if !status.Valid() {
			return usage(fmt.Sprintf("unknown order status %q", opts.Status))
		}
		patch := domain.OrderPatch{Status: &status}
		var update state.Update = state.Remote{Patch: patch}
		if opts.Local {
			if err := app.orders.Refresh(ctx, remote.OrderFilter{}); err != nil {
				return err
			}
			update = state.Local{Patch: patch}
		}
		order, err := app.orders.Apply(ctx, opts.ID, update)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Order %s is now %s\n", order.ID, order.Status)
		return nil

	case "menu":
		filter := remote.CategoryFilter{Page: opts.Page, Limit: opts.Limit}
		if opts.ActiveOnly {
			active := true
			filter.IsActive = &active
		}
		var categories []domain.Category
		err := app.session.Authorized(ctx, func(ctx context.Context, token string) error {
			var err error
			categories, err = app.food.Categories(ctx, token, filter)
			return err
		})
		if err != nil {
			return err
		}
		for _, c := range categories {
			fmt.Fprintf(out, "%s\n", c.Name)
			for _, d := range c.Items {
				mark := ""
				if !d.IsAvailable {
					mark = " (unavailable)"
				}
				fmt.Fprintf(out, "  %-6s %-24s %8.2f%s\n", d.ID, d.Name, d.Price, mark)
			}
		}
		return nil

	case "dish":
		if opts.ID == "" {
			return usage("--id required")
		}
		var dish domain.MenuItem
		err := app.session.Authorized(ctx, func(ctx context.Context, token string) error {
			var err error
			dish, err = app.food.Dish(ctx, token, opts.ID)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\t%s\t%.2f\t%d min\n%s\n", dish.ID, dish.Name, dish.Price, dish.PrepTimeMinutes, dish.Description)
		return nil
	}
	return usage(fmt.Sprintf("unknown command %q", cmd))
}

func printTables(out io.Writer, tables *state.Tables) {
	for _, g := range tables.Groups() {
		fmt.Fprintf(out, "%s\n", g.Location)
		for _, t := range g.Tables {
			current := ""
			if t.CurrentOrderID != nil {
				current = " order " + *t.CurrentOrderID
			}
			fmt.Fprintf(out, "  %-4s %-6s %2d seats  %s%s\n", t.ID, t.TableNumber, t.Seats, t.Status, current)
		}
	}
}

func printOrders(out io.Writer, orders *state.Orders) {
	list := orders.List()
	if len(list) == 0 {
		fmt.Fprintln(out, "No orders")
		return
	}
	for _, o := range list {
		fmt.Fprintf(out, "%s  table %-4s %-10s %3d items %8.2f\n", o.ID, o.TableID, o.Status, len(o.Items), o.Total)
	}
	if total := orders.Total(); total > len(list) {
		fmt.Fprintf(out, "(%d of %d)\n", len(list), total)
	}
}

// orderStatusFlag accepts client or backend status names.
func orderStatusFlag(raw string) domain.OrderStatus {
	if raw == "" {
		return ""
	}
	if s := domain.OrderStatus(strings.ToLower(raw)); s.Valid() {
		return s
	}
	if s := remote.MapOrderStatus(raw); s != domain.OrderDraft || strings.EqualFold(strings.TrimSpace(raw), "pending") {
		return s
	}
	// left invalid so callers can reject it
	return domain.OrderStatus(raw)
}

func parseItems(raw string) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.SplitN(part, ":", 3)
		qty := 1
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n <= 0 {
				return nil, usage(fmt.Sprintf("bad quantity in %q", part))
			}
			qty = n
		}
		item := domain.OrderItem{MenuItemID: fields[0], Quantity: qty}
		if len(fields) == 3 {
			item.Note = fields[2]
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, usage("--items required")
	}
	return items, nil
}

func usage(msg string) error {
	return fmt.Errorf("%w: %s", errUsage, msg)
}
