package session

import (
	"context"
	"errors"
	"net/http"
	"testing"

	apihttp "github.com/spec-kit/tablepos/internal/api/http"
	"github.com/spec-kit/tablepos/internal/config"
	"github.com/spec-kit/tablepos/internal/remote"
	"github.com/spec-kit/tablepos/internal/tokenstore"
	"github.com/spec-kit/tablepos/pkg/apperrors"
)

func demoAuthAPI(t *testing.T) *remote.AuthService {
	t.Helper()
	app, err := apihttp.NewDemoApp(context.Background(), config.BackendConfig{
		JWTSecret:             "session-test",
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLHours:  1,
		BcryptCost:            4,
	}, apihttp.DemoOptions{TaxRate: 0.10}, nil)
	if err != nil {
		t.Fatalf("NewDemoApp() error = %v", err)
	}
	client := remote.NewClient(config.NewAPIConfig("http://pos.test"),
		remote.WithHTTPClient(&http.Client{Transport: apihttp.InProcessTransport{App: app}}))
	return remote.NewAuthService(client)
}

func TestManagerAgainstDemoBackend(t *testing.T) {
	ctx := context.Background()
	kv := tokenstore.NewMemoryKV()
	api := demoAuthAPI(t)
	m := New(tokenstore.New(kv, nil), api, nil)
	if err := m.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	_, err := m.Login(ctx, "admin", "wrong")
	if !apperrors.IsAuthReason(err, apperrors.AuthInvalidCredentials) {
		t.Fatalf("expected INVALID_CREDENTIALS, got %v", err)
	}

	session, err := m.Login(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := m.RefreshAccessToken(ctx); err != nil {
		t.Fatalf("RefreshAccessToken() error = %v", err)
	}
	rotated, _ := m.Session()
	if rotated.RefreshToken == session.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	restarted := New(tokenstore.New(kv, nil), api, nil)
	if err := restarted.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got, ok := restarted.Session(); !ok || got != rotated {
		t.Fatalf("restart restored %+v, want %+v", got, rotated)
	}

	user, err := restarted.ReloadProfile(ctx)
	if err != nil || user.Username != "admin" {
		t.Fatalf("ReloadProfile() = %+v, %v", user, err)
	}

	restarted.Logout(ctx)
	if restarted.IsAuthenticated() || kv.Len() != 0 {
		t.Fatal("logout left state behind")
	}
}

func TestManagerLogoutWithUnreachableBackend(t *testing.T) {
	ctx := context.Background()
	kv := tokenstore.NewMemoryKV()
	m := New(tokenstore.New(kv, nil), demoAuthAPI(t), nil)
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	offline := remote.NewAuthService(remote.NewClient(config.NewAPIConfig("http://127.0.0.1:1"),
		remote.WithHTTPClient(&http.Client{Transport: failingTransport{}})))
	m.api = offline

	m.Logout(ctx)
	if m.IsAuthenticated() || kv.Len() != 0 {
		t.Fatal("offline logout must still clear local state")
	}
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp: connection refused")
}
