package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spec-kit/tablepos/internal/api/dto"
	"github.com/spec-kit/tablepos/internal/domain"
)

// TableInput describes a table to create.
type TableInput struct {
	TableNumber string
	Seats       int
	Location    string
	Status      domain.TableStatus
}

// TableService calls the /tables endpoints.
type TableService struct {
	client *Client
}

// NewTableService builds the service.
func NewTableService(client *Client) *TableService {
	return &TableService{client: client}
}

// ListByLocation fetches every table grouped by location.
func (s *TableService) ListByLocation(ctx context.Context, token string) ([]domain.TableGroup, error) {
	var groups []dto.TableGroupWire
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: "/tables/by-location", Token: token}, &groups); err != nil {
		return nil, err
	}
	return toTableGroups(groups)
}

// Create adds a table and returns the server's copy.
func (s *TableService) Create(ctx context.Context, token string, input TableInput) (domain.Table, error) {
	var wire dto.TableWire
	err := s.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/tables",
		Token:  token,
		Body: dto.CreateTableRequest{
			TableNumber: input.TableNumber,
			Seats:       input.Seats,
			Location:    input.Location,
			Status:      string(input.Status),
		},
	}, &wire)
	if err != nil {
		return domain.Table{}, err
	}
	return toTable(wire, "")
}

// UpdateStatus changes a table's status and returns the server's copy.
func (s *TableService) UpdateStatus(ctx context.Context, token, id string, status domain.TableStatus) (domain.Table, error) {
	raw := string(status)
	var wire dto.TableWire
	err := s.client.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/tables/" + url.PathEscape(id),
		Token:  token,
		Body:   dto.UpdateTableRequest{Status: &raw},
	}, &wire)
	if err != nil {
		return domain.Table{}, err
	}
	return toTable(wire, "")
}
