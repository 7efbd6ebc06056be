package remote

import (
	"context"
	"net/http"
	"testing"

	apihttp "github.com/spec-kit/tablepos/internal/api/http"
	"github.com/spec-kit/tablepos/internal/config"
)

const testBaseURL = "http://pos.test"

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testBackendConfig() config.BackendConfig {
	return config.BackendConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLHours:  1,
		BcryptCost:            4,
	}
}

// newDemoClient returns a client wired to a fresh in-memory demo backend.
func newDemoClient(t *testing.T) *Client {
	t.Helper()
	app, err := apihttp.NewDemoApp(context.Background(), testBackendConfig(), apihttp.DemoOptions{TaxRate: 0.10}, nil)
	if err != nil {
		t.Fatalf("NewDemoApp() error = %v", err)
	}
	transport := apihttp.InProcessTransport{App: app}
	return NewClient(config.NewAPIConfig(testBaseURL), WithHTTPClient(&http.Client{Transport: transport}))
}

func loginAs(t *testing.T, client *Client, username, password string) string {
	t.Helper()
	session, err := NewAuthService(client).Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("Login(%s) error = %v", username, err)
	}
	return session.AccessToken
}
