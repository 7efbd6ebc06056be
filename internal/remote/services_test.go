package remote

import (
	"context"
	"net/http"
	"testing"

	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/pkg/apperrors"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newDemoClient(t)
	authAPI := NewAuthService(client)

	session, err := authAPI.Login(ctx, "waiter", "waiter123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if session.User.Username != "waiter" || session.User.Role != domain.RoleStaff {
		t.Fatalf("unexpected user %+v", session.User)
	}
	if !session.Valid() {
		t.Fatal("session should be valid")
	}

	profile, err := authAPI.Profile(ctx, session.AccessToken)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if profile.ID != session.User.ID {
		t.Fatalf("profile id = %s, want %s", profile.ID, session.User.ID)
	}

	access, refresh, err := authAPI.Refresh(ctx, session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("refresh returned empty tokens")
	}

	_, _, err = authAPI.Refresh(ctx, session.RefreshToken)
	if !apperrors.IsUnauthorized(err) {
		t.Fatalf("reused refresh token should be rejected, got %v", err)
	}

	if err := authAPI.Logout(ctx, access); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
}

func TestAuthServiceRejectsBadCredentials(t *testing.T) {
	client := newDemoClient(t)

	_, err := NewAuthService(client).Login(context.Background(), "waiter", "nope")
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Kind != apperrors.KindRemote || appErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected remote 401, got %v", err)
	}
	if appErr.Message != "invalid credentials" {
		t.Fatalf("message = %q", appErr.Message)
	}
}

func TestProfileWithoutTokenIsUnauthorized(t *testing.T) {
	client := newDemoClient(t)
	_, err := NewAuthService(client).Profile(context.Background(), "")
	if !apperrors.IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestTableServiceListCreateUpdate(t *testing.T) {
	ctx := context.Background()
	client := newDemoClient(t)
	token := loginAs(t, client, "admin", "admin123")
	tables := NewTableService(client)

	groups, err := tables.ListByLocation(ctx, token)
	if err != nil {
		t.Fatalf("ListByLocation() error = %v", err)
	}
	if len(groups) != 3 || groups[0].Location != "Main Hall" || len(groups[0].Tables) != 3 {
		t.Fatalf("unexpected groups %+v", groups)
	}

	created, err := tables.Create(ctx, token, TableInput{TableNumber: "P9", Seats: 4, Location: "Patio"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" || created.Status != domain.TableAvailable || created.Seats != 4 {
		t.Fatalf("unexpected table %+v", created)
	}

	_, err = tables.Create(ctx, token, TableInput{TableNumber: "P9", Seats: 2, Location: "Patio"})
	if apperrors.StatusCode(err) != http.StatusConflict {
		t.Fatalf("duplicate table should be 409, got %v", err)
	}

	updated, err := tables.UpdateStatus(ctx, token, created.ID, domain.TableReserved)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if updated.Status != domain.TableReserved {
		t.Fatalf("status = %s", updated.Status)
	}

	_, err = tables.UpdateStatus(ctx, token, "999", domain.TableDirty)
	if apperrors.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("missing table should be 404, got %v", err)
	}
}

func TestOrderServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	client := newDemoClient(t)
	token := loginAs(t, client, "waiter", "waiter123")
	orders := NewOrderService(client, 0.10)

	order, err := orders.Create(ctx, token, OrderInput{
		TableID: "2",
		Items: []domain.OrderItem{
			{MenuItemID: "101", Quantity: 2},
			{MenuItemID: "201", Quantity: 1, Note: "no basil"},
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if order.Status != domain.OrderDraft {
		t.Fatalf("new order status = %s, want draft", order.Status)
	}
	if order.Subtotal != 23 || order.Tax != 2.3 || order.Total != 25.3 {
		t.Fatalf("totals = %v/%v/%v", order.Subtotal, order.Tax, order.Total)
	}
	if len(order.Items) != 2 || order.Items[0].MenuItemName != "Garlic Bread" {
		t.Fatalf("unexpected items %+v", order.Items)
	}

	groups, err := NewTableService(client).ListByLocation(ctx, token)
	if err != nil {
		t.Fatalf("ListByLocation() error = %v", err)
	}
	table := groups[0].Tables[1]
	if table.Status != domain.TableOccupied || table.CurrentOrderID == nil || *table.CurrentOrderID != order.ID {
		t.Fatalf("table not occupied by order: %+v", table)
	}

	status := domain.OrderInKitchen
	updated, err := orders.Update(ctx, token, order.ID, domain.OrderPatch{Status: &status})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Status != domain.OrderInKitchen {
		t.Fatalf("status = %s, want in_kitchen", updated.Status)
	}

	page, err := orders.List(ctx, token, OrderFilter{Status: domain.OrderInKitchen})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 1 || len(page.Orders) != 1 || page.Orders[0].ID != order.ID {
		t.Fatalf("unexpected page %+v", page)
	}

	drafts, err := orders.List(ctx, token, OrderFilter{Status: domain.OrderDraft})
	if err != nil {
		t.Fatalf("List(draft) error = %v", err)
	}
	if len(drafts.Orders) != 0 {
		t.Fatalf("expected no drafts, got %d", len(drafts.Orders))
	}

	byTable, err := orders.ListByTable(ctx, token, "2")
	if err != nil {
		t.Fatalf("ListByTable() error = %v", err)
	}
	if len(byTable) != 1 {
		t.Fatalf("orders for table 2 = %d", len(byTable))
	}
}

func TestOrderServiceRejectsUnavailableDish(t *testing.T) {
	client := newDemoClient(t)
	token := loginAs(t, client, "waiter", "waiter123")

	_, err := NewOrderService(client, 0.10).Create(context.Background(), token, OrderInput{
		TableID: "1",
		Items:   []domain.OrderItem{{MenuItemID: "203", Quantity: 1}},
	})
	appErr, ok := apperrors.As(err)
	if !ok || appErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestOrderListAcceptsBareArray(t *testing.T) {
	body := `[{"id":7,"tableId":"3","status":"PREPARING","total":"11.00","orderItems":[{"id":1,"dish":{"id":101,"name":"Garlic Bread"},"quantity":"2","price":"5.50"}]}]`
	client := stubClient(respond(http.StatusOK, body))

	page, err := NewOrderService(client, 0.10).List(context.Background(), "t", OrderFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 1 || len(page.Orders) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	got := page.Orders[0]
	if got.ID != "7" || got.Status != domain.OrderInKitchen || got.Total != 11 {
		t.Fatalf("unexpected order %+v", got)
	}
	if got.Items[0].MenuItemID != "101" || got.Items[0].Quantity != 2 || got.Subtotal != 11 {
		t.Fatalf("unexpected item %+v subtotal %v", got.Items[0], got.Subtotal)
	}
}

func TestFoodService(t *testing.T) {
	ctx := context.Background()
	client := newDemoClient(t)
	token := loginAs(t, client, "chef", "chef123")
	food := NewFoodService(client)

	active := true
	categories, err := food.Categories(ctx, token, CategoryFilter{IsActive: &active})
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("active categories = %d, want 2", len(categories))
	}
	if categories[0].Items[0].Category != "Starters" {
		t.Fatalf("category name not carried: %+v", categories[0].Items[0])
	}

	dish, err := food.Dish(ctx, token, "202")
	if err != nil {
		t.Fatalf("Dish() error = %v", err)
	}
	if dish.Name != "Grilled Salmon" || dish.Price != 18.5 {
		t.Fatalf("unexpected dish %+v", dish)
	}

	_, err = food.Dish(ctx, token, "999")
	if apperrors.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestTableValidationError(t *testing.T) {
	client := stubClient(respond(http.StatusOK, `{"data":[{"location":"Bar","tables":[{"tableNumber":"X1","seats":2}]}]}`))

	_, err := NewTableService(client).ListByLocation(context.Background(), "t")
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Kind != apperrors.KindValidation || appErr.Entity != "table" || appErr.Field != "id" {
		t.Fatalf("expected table id validation error, got %v", err)
	}
}

func TestTableTransformFallbacks(t *testing.T) {
	body := `{"data":[{"location":"Bar","tables":[{"id":9,"tableNumber":12,"capacity":"4","status":"CLEANING","currentOrderId":null}]}]}`
	client := stubClient(respond(http.StatusOK, body))

	groups, err := NewTableService(client).ListByLocation(context.Background(), "t")
	if err != nil {
		t.Fatalf("ListByLocation() error = %v", err)
	}
	table := groups[0].Tables[0]
	if table.ID != "9" || table.TableNumber != "12" || table.Seats != 4 || table.Location != "Bar" {
		t.Fatalf("unexpected table %+v", table)
	}
	if table.Status != domain.TableDirty || table.CurrentOrderID != nil {
		t.Fatalf("unexpected status %s / %v", table.Status, table.CurrentOrderID)
	}
}

func TestMapOrderStatus(t *testing.T) {
	cases := map[string]domain.OrderStatus{
		"pending":    domain.OrderDraft,
		"SENT":       domain.OrderSent,
		"preparing":  domain.OrderInKitchen,
		"in_kitchen": domain.OrderInKitchen,
		" served ":   domain.OrderServed,
		"completed":  domain.OrderCompleted,
		"cancelled":  domain.OrderCancelled,
		"mystery":    domain.OrderDraft,
		"":           domain.OrderDraft,
	}
	for in, want := range cases {
		if got := MapOrderStatus(in); got != want {
			t.Errorf("MapOrderStatus(%q) = %s, want %s", in, got, want)
		}
	}
	if BackendOrderStatus(domain.OrderDraft) != "pending" {
		t.Fatal("draft must be sent as pending")
	}
}
