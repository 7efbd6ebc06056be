package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tablepos/internal/api/dto"
	"github.com/spec-kit/tablepos/internal/config"
	"github.com/spec-kit/tablepos/internal/repository"
	"github.com/spec-kit/tablepos/internal/service"
)

func TestToErrorBody(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fiber.NewError(fiber.StatusBadRequest, "username and password are required"), 400, "BAD_REQUEST"},
		{&service.ValidationError{Message: "seats must be positive"}, 400, "VALIDATION_ERROR"},
		{fmt.Errorf("load: %w", repository.ErrNotFound), 404, "NOT_FOUND"},
		{repository.ErrDuplicate, 409, "CONFLICT"},
		{service.ErrInvalidCredentials, 401, "UNAUTHORIZED"},
		{service.ErrAccountDisabled, 403, "FORBIDDEN"},
		{context.DeadlineExceeded, 504, "TIMEOUT"},
		{errors.New("boom"), 500, "INTERNAL"},
	}
	for _, tc := range cases {
		status, body := toErrorBody(tc.err)
		if status != tc.status || body.Error.Code != tc.code {
			t.Errorf("%v: got %d %s, want %d %s", tc.err, status, body.Error.Code, tc.status, tc.code)
		}
	}
}

func newTestBackend(t *testing.T) *fiber.App {
	t.Helper()
	app, err := NewDemoApp(context.Background(), config.BackendConfig{
		BasePath:              "/api",
		JWTSecret:             "handler-test",
		AccessTokenTTLMinutes: 5,
		RefreshTokenTTLHours:  1,
		BcryptCost:            4,
	}, DemoOptions{TaxRate: 0.10}, nil)
	if err != nil {
		t.Fatalf("NewDemoApp() error = %v", err)
	}
	return app
}

func TestProtectedRouteWritesErrorEnvelope(t *testing.T) {
	app := newTestBackend(t)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/tables/by-location", nil), -1)
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body dto.ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "UNAUTHORIZED" || body.Error.Message == "" {
		t.Fatalf("unexpected envelope %+v", body)
	}
}

func TestLoginRequiresFields(t *testing.T) {
	app := newTestBackend(t)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"waiter"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d body %s", resp.StatusCode, raw)
	}
}

func TestHealthLive(t *testing.T) {
	app := newTestBackend(t)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/health/live", nil), -1)
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestInProcessTransportHonoursCancelledContext(t *testing.T) {
	transport := InProcessTransport{App: newTestBackend(t)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, _ := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, "http://pos.test/api/health/live", nil)
	if _, err := transport.RoundTrip(req); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
