package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spec-kit/tablepos/internal/api/dto"
	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/pkg/apperrors"
)

// OrderFilter narrows GET /orders. Zero values are not sent.
type OrderFilter struct {
	Status  domain.OrderStatus
	TableID string
	Page    int
	Limit   int
}

// OrderPage is one page of orders.
type OrderPage struct {
	Orders []domain.Order
	Total  int
	Page   int
	Limit  int
}

// OrderInput describes an order to create.
type OrderInput struct {
	TableID string
	Notes   string
	Items   []domain.OrderItem
}

// OrderService calls the /orders endpoints.
type OrderService struct {
	client  *Client
	taxRate float64
}

// NewOrderService builds the service. taxRate is used to recompute display subtotals.
func NewOrderService(client *Client, taxRate float64) *OrderService {
	return &OrderService{client: client, taxRate: taxRate}
}

// List fetches a page of orders.
func (s *OrderService) List(ctx context.Context, token string, filter OrderFilter) (OrderPage, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", BackendOrderStatus(filter.Status))
	}
	if filter.TableID != "" {
		query.Set("tableId", filter.TableID)
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	var raw json.RawMessage
	err := s.client.Do(ctx, Request{
		Method:       http.MethodGet,
		Path:         "/orders",
		Query:        query,
		Token:        token,
		KeepEnvelope: true,
	}, &raw)
	if err != nil {
		return OrderPage{}, err
	}

	var page dto.OrderPage
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &page.Data); err != nil {
			return OrderPage{}, apperrors.NewMalformedResponse(err)
		}
	} else if err := json.Unmarshal(raw, &page); err != nil {
		return OrderPage{}, apperrors.NewMalformedResponse(err)
	}

	orders, err := toOrders(page.Data, s.taxRate)
	if err != nil {
		return OrderPage{}, err
	}
	total := page.Meta.Total
	if total == 0 {
		total = len(orders)
	}
	return OrderPage{Orders: orders, Total: total, Page: page.Meta.Page, Limit: page.Meta.Limit}, nil
}

// ListByTable fetches every order of one table.
func (s *OrderService) ListByTable(ctx context.Context, token, tableID string) ([]domain.Order, error) {
	var wires []dto.OrderWire
	err := s.client.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/orders/table/" + url.PathEscape(tableID),
		Token:  token,
	}, &wires)
	if err != nil {
		return nil, err
	}
	return toOrders(wires, s.taxRate)
}

// Create places a new order.
func (s *OrderService) Create(ctx context.Context, token string, input OrderInput) (domain.Order, error) {
	var wire dto.OrderWire
	err := s.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/orders",
		Token:  token,
		Body: dto.CreateOrderRequest{
			TableID: input.TableID,
			Notes:   input.Notes,
			Items:   toItemInputs(input.Items),
		},
	}, &wire)
	if err != nil {
		return domain.Order{}, err
	}
	return toOrder(wire, s.taxRate)
}

// Update sends a partial change and returns the server's copy.
func (s *OrderService) Update(ctx context.Context, token, id string, patch domain.OrderPatch) (domain.Order, error) {
	req := dto.UpdateOrderRequest{Notes: patch.Notes, Items: toItemInputs(patch.Items)}
	if patch.Status != nil {
		status := BackendOrderStatus(*patch.Status)
		req.Status = &status
	}

	var wire dto.OrderWire
	err := s.client.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/orders/" + url.PathEscape(id),
		Token:  token,
		Body:   req,
	}, &wire)
	if err != nil {
		return domain.Order{}, err
	}
	return toOrder(wire, s.taxRate)
}
