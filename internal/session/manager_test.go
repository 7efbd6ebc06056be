package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/internal/tokenstore"
	"github.com/spec-kit/tablepos/pkg/apperrors"
)

type fakeAuthAPI struct {
	mu           sync.Mutex
	login        func(username, password string) (domain.Session, error)
	refresh      func(refreshToken string) (string, string, error)
	logout       func(token string) error
	profile      func(token string) (domain.User, error)
	refreshCalls int
	logoutCalls  int
}

func (f *fakeAuthAPI) Login(_ context.Context, username, password string) (domain.Session, error) {
	return f.login(username, password)
}

func (f *fakeAuthAPI) Refresh(_ context.Context, refreshToken string) (string, string, error) {
	f.mu.Lock()
	f.refreshCalls++
	f.mu.Unlock()
	return f.refresh(refreshToken)
}

func (f *fakeAuthAPI) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	f.logoutCalls++
	f.mu.Unlock()
	if f.logout == nil {
		return nil
	}
	return f.logout(token)
}

func (f *fakeAuthAPI) Profile(_ context.Context, token string) (domain.User, error) {
	return f.profile(token)
}

func testSession() domain.Session {
	return domain.Session{
		User:         domain.User{ID: "2", Username: "waiter", FullName: "Walter Waiter", Role: domain.RoleStaff, IsActive: true},
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
	}
}

func acceptingAPI() *fakeAuthAPI {
	return &fakeAuthAPI{
		login: func(username, password string) (domain.Session, error) {
			if username != "waiter" || password != "waiter123" {
				return domain.Session{}, apperrors.NewRemoteError(http.StatusUnauthorized, "invalid credentials")
			}
			return testSession(), nil
		},
		refresh: func(refreshToken string) (string, string, error) {
			return "access-2", "refresh-2", nil
		},
	}
}

func TestLoginThenRestartRestoresSession(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	kv, err := tokenstore.NewFileKV(path, "")
	if err != nil {
		t.Fatalf("NewFileKV() error = %v", err)
	}
	first := New(tokenstore.New(kv, nil), acceptingAPI(), nil)
	if err := first.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	session, err := first.Login(ctx, "waiter", "waiter123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	reopened, err := tokenstore.NewFileKV(path, "")
	if err != nil {
		t.Fatalf("NewFileKV() error = %v", err)
	}
	second := New(tokenstore.New(reopened, nil), acceptingAPI(), nil)
	if err := second.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	restored, ok := second.Session()
	if !ok || restored != session {
		t.Fatalf("restored %+v (ok=%v), want %+v", restored, ok, session)
	}
}

func TestLogoutClearsEvenWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	kv := tokenstore.NewMemoryKV()
	store := tokenstore.New(kv, nil)
	api := acceptingAPI()
	api.logout = func(string) error {
		return apperrors.NewNetworkError(errors.New("connection reset"))
	}

	m := New(store, api, nil)
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	m.Logout(ctx)
	if m.IsAuthenticated() {
		t.Fatal("still authenticated after logout")
	}
	if kv.Len() != 0 {
		t.Fatalf("token store holds %d entries", kv.Len())
	}
	if api.logoutCalls != 1 {
		t.Fatalf("remote logout calls = %d", api.logoutCalls)
	}

	m.Logout(ctx)
	if m.State() != StateUnauthenticated {
		t.Fatalf("state = %s", m.State())
	}
	if api.logoutCalls != 1 {
		t.Fatal("second logout must not call the server without a token")
	}
}

func TestLogoutIgnoresUnauthorized(t *testing.T) {
	ctx := context.Background()
	api := acceptingAPI()
	api.logout = func(string) error { return apperrors.NewRemoteError(http.StatusUnauthorized, "expired") }

	m := New(tokenstore.New(tokenstore.NewMemoryKV(), nil), api, nil)
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	m.Logout(ctx)
	if _, ok := m.Session(); ok {
		t.Fatal("session survived logout")
	}
}

func TestRestorePartialStateIsNoSession(t *testing.T) {
	cases := map[string]map[string]string{
		"access only": {tokenstore.KeyAccessToken: "a"},
		"no refresh":  {tokenstore.KeyAccessToken: "a", tokenstore.KeyUser: `{"id":"2","username":"waiter"}`},
		"bad user":    {tokenstore.KeyAccessToken: "a", tokenstore.KeyRefreshToken: "r", tokenstore.KeyUser: "{not json"},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := tokenstore.NewMemoryKV()
			if err := kv.Set(ctx, values); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			m := New(tokenstore.New(kv, nil), acceptingAPI(), nil)
			if err := m.Restore(ctx); err != nil {
				t.Fatalf("Restore() error = %v", err)
			}
			if m.State() != StateUnauthenticated {
				t.Fatalf("state = %s, want unauthenticated", m.State())
			}
			if s, ok := m.Session(); ok || s != (domain.Session{}) {
				t.Fatalf("half session leaked: %+v", s)
			}
			if kv.Len() != 0 {
				t.Fatalf("partial entries left behind: %d", kv.Len())
			}
		})
	}
}

func TestStateMachine(t *testing.T) {
	ctx := context.Background()
	m := New(tokenstore.New(tokenstore.NewMemoryKV(), nil), acceptingAPI(), nil)

	if m.State() != StateUninitialized {
		t.Fatalf("initial state = %s", m.State())
	}
	if err := m.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if m.State() != StateUnauthenticated {
		t.Fatalf("after restore = %s", m.State())
	}
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := m.Restore(ctx); err != nil {
		t.Fatalf("second Restore() error = %v", err)
	}
	if m.State() != StateAuthenticated {
		t.Fatalf("second restore changed state to %s", m.State())
	}
	m.Logout(ctx)
	if m.State() != StateUnauthenticated {
		t.Fatalf("after logout = %s", m.State())
	}
}

func TestLoginErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		reason apperrors.AuthReason
		kind   apperrors.Kind
	}{
		{"unauthorized", apperrors.NewRemoteError(401, "nope"), apperrors.AuthInvalidCredentials, apperrors.KindAuth},
		{"bad request mentioning password", apperrors.NewRemoteError(400, "Wrong password"), apperrors.AuthInvalidCredentials, apperrors.KindAuth},
		{"network", apperrors.NewNetworkError(errors.New("dial")), apperrors.AuthNetwork, apperrors.KindAuth},
		{"malformed", apperrors.NewMalformedResponse(errors.New("eof")), apperrors.AuthMalformedResponse, apperrors.KindAuth},
		{"missing user id", apperrors.NewValidationError("user", "id"), apperrors.AuthMalformedResponse, apperrors.KindAuth},
		{"server error", apperrors.NewRemoteError(500, "boom"), "", apperrors.KindRemote},
		{"server error mentioning credentials", apperrors.NewRemoteError(500, "credential check failed"), apperrors.AuthInvalidCredentials, apperrors.KindAuth},
		{"forbidden", apperrors.NewRemoteError(403, "account disabled"), "", apperrors.KindRemote},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAuthAPI{login: func(string, string) (domain.Session, error) { return domain.Session{}, tc.err }}
			kv := tokenstore.NewMemoryKV()
			m := New(tokenstore.New(kv, nil), api, nil)

			_, err := m.Login(context.Background(), "waiter", "x")
			if got := apperrors.KindOf(err); got != tc.kind {
				t.Fatalf("kind = %v, want %v (%v)", got, tc.kind, err)
			}
			if tc.reason != "" && !apperrors.IsAuthReason(err, tc.reason) {
				t.Fatalf("expected reason %s, got %v", tc.reason, err)
			}
			if m.IsAuthenticated() || kv.Len() != 0 {
				t.Fatal("failed login must not leave a session")
			}
		})
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.New(tokenstore.NewMemoryKV(), nil)
	m := New(store, acceptingAPI(), nil)
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := m.RefreshAccessToken(ctx); err != nil {
		t.Fatalf("RefreshAccessToken() error = %v", err)
	}
	session, _ := m.Session()
	if session.AccessToken != "access-2" || session.RefreshToken != "refresh-2" || session.User.ID != "2" {
		t.Fatalf("unexpected session %+v", session)
	}
	persisted, err := store.Load(ctx)
	if err != nil || persisted != session {
		t.Fatalf("persisted %+v err %v", persisted, err)
	}
}

func TestRefreshFailureLogsOut(t *testing.T) {
	ctx := context.Background()
	kv := tokenstore.NewMemoryKV()
	api := acceptingAPI()
	api.refresh = func(string) (string, string, error) {
		return "", "", apperrors.NewRemoteError(http.StatusUnauthorized, "refresh token revoked")
	}
	m := New(tokenstore.New(kv, nil), api, nil)
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	err := m.RefreshAccessToken(ctx)
	if !apperrors.IsAuthReason(err, apperrors.AuthRefreshFailed) {
		t.Fatalf("expected REFRESH_FAILED, got %v", err)
	}
	if m.IsAuthenticated() {
		t.Fatal("refresh failure must log out")
	}
	if kv.Len() != 0 {
		t.Fatal("refresh failure must clear the store")
	}
}

func TestRefreshWithoutSessionFails(t *testing.T) {
	m := New(tokenstore.New(tokenstore.NewMemoryKV(), nil), acceptingAPI(), nil)
	err := m.RefreshAccessToken(context.Background())
	if !apperrors.IsAuthReason(err, apperrors.AuthRefreshFailed) {
		t.Fatalf("expected REFRESH_FAILED, got %v", err)
	}
}

func TestRefreshSkipsWhenAnotherCallerRotated(t *testing.T) {
	ctx := context.Background()
	api := acceptingAPI()
	m := New(tokenstore.New(tokenstore.NewMemoryKV(), nil), api, nil)
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := m.RefreshAccessToken(ctx); err != nil {
		t.Fatalf("RefreshAccessToken() error = %v", err)
	}

	// a caller that saw access-1 before the rotation must not refresh again
	if err := m.refresh(ctx, "access-1"); err != nil {
		t.Fatalf("refresh() error = %v", err)
	}
	if api.refreshCalls != 1 {
		t.Fatalf("refresh calls = %d, want 1", api.refreshCalls)
	}
}

func TestConcurrentRefreshesAreSerialized(t *testing.T) {
	ctx := context.Background()
	api := acceptingAPI()
	var (
		inFlight int
		maxSeen  int
		counter  int
		guard    sync.Mutex
	)
	api.refresh = func(string) (string, string, error) {
		guard.Lock()
		inFlight++
		if inFlight > maxSeen {
			maxSeen = inFlight
		}
		counter++
		n := counter
		guard.Unlock()

		time.Sleep(5 * time.Millisecond)

		guard.Lock()
		inFlight--
		guard.Unlock()
		return fmt.Sprintf("access-%d", n+1), fmt.Sprintf("refresh-%d", n+1), nil
	}
	m := New(tokenstore.New(tokenstore.NewMemoryKV(), nil), api, nil)
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.RefreshAccessToken(ctx); err != nil {
				t.Errorf("RefreshAccessToken() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("refresh exchanges overlapped: %d in flight", maxSeen)
	}
	if !m.IsAuthenticated() {
		t.Fatal("session lost")
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "2",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("any-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAccessTokenRefreshesNearExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	api := acceptingAPI()
	expiring := signedToken(t, now.Add(10*time.Second))
	fresh := signedToken(t, now.Add(15*time.Minute))
	api.login = func(string, string) (domain.Session, error) {
		s := testSession()
		s.AccessToken = expiring
		return s, nil
	}
	api.refresh = func(string) (string, string, error) { return fresh, "refresh-2", nil }

	m := New(tokenstore.New(tokenstore.NewMemoryKV(), nil), api, nil,
		WithRefreshSkew(30*time.Second), WithClock(func() time.Time { return now }))
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	token, err := m.AccessToken(ctx)
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	if token != fresh {
		t.Fatal("expiring token was not refreshed")
	}

	again, err := m.AccessToken(ctx)
	if err != nil || again != fresh || api.refreshCalls != 1 {
		t.Fatalf("fresh token refreshed again: calls=%d err=%v", api.refreshCalls, err)
	}
}

func TestAccessTokenOpaqueAndMissing(t *testing.T) {
	ctx := context.Background()
	m := New(tokenstore.New(tokenstore.NewMemoryKV(), nil), acceptingAPI(), nil)

	if _, err := m.AccessToken(ctx); !apperrors.IsAuthReason(err, apperrors.AuthNoSession) {
		t.Fatalf("expected NO_SESSION, got %v", err)
	}
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	token, err := m.AccessToken(ctx)
	if err != nil || token != "access-1" {
		t.Fatalf("AccessToken() = %q, %v", token, err)
	}
}

func TestAuthorizedRetriesOnceOnUnauthorized(t *testing.T) {
	ctx := context.Background()
	m := New(tokenstore.New(tokenstore.NewMemoryKV(), nil), acceptingAPI(), nil)
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	var tokens []string
	err := m.Authorized(ctx, func(_ context.Context, token string) error {
		tokens = append(tokens, token)
		if token == "access-1" {
			return apperrors.NewRemoteError(http.StatusUnauthorized, "jwt expired")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Authorized() error = %v", err)
	}
	if len(tokens) != 2 || tokens[1] != "access-2" {
		t.Fatalf("tokens used = %v", tokens)
	}
}

func TestAuthorizedGivesUpAfterOneRetry(t *testing.T) {
	ctx := context.Background()
	m := New(tokenstore.New(tokenstore.NewMemoryKV(), nil), acceptingAPI(), nil)
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	calls := 0
	err := m.Authorized(ctx, func(context.Context, string) error {
		calls++
		return apperrors.NewRemoteError(http.StatusUnauthorized, "still no")
	})
	if !apperrors.IsUnauthorized(err) || calls != 2 {
		t.Fatalf("calls=%d err=%v", calls, err)
	}
}

func TestReloadProfilePersistsUser(t *testing.T) {
	ctx := context.Background()
	store := tokenstore.New(tokenstore.NewMemoryKV(), nil)
	api := acceptingAPI()
	api.profile = func(string) (domain.User, error) {
		u := testSession().User
		u.FullName = "Walter W."
		return u, nil
	}
	m := New(store, api, nil)
	if _, err := m.Login(ctx, "waiter", "waiter123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	user, err := m.ReloadProfile(ctx)
	if err != nil {
		t.Fatalf("ReloadProfile() error = %v", err)
	}
	persisted, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if user.FullName != "Walter W." || persisted.User.FullName != "Walter W." {
		t.Fatalf("user not replaced: %+v / %+v", user, persisted.User)
	}
}

func TestAuthorizedWithoutSessionCallsAnonymously(t *testing.T) {
	ctx := context.Background()
	api := acceptingAPI()
	m := New(tokenstore.New(tokenstore.NewMemoryKV(), nil), api, nil)
	if err := m.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	var tokens []string
	err := m.Authorized(ctx, func(_ context.Context, token string) error {
		tokens = append(tokens, token)
		return apperrors.NewRemoteError(http.StatusUnauthorized, "login required")
	})
	if !apperrors.IsUnauthorized(err) {
		t.Fatalf("expected the backend's 401, got %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "" {
		t.Fatalf("tokens used = %q", tokens)
	}
	if api.refreshCalls != 0 {
		t.Fatalf("anonymous 401 must not refresh, got %d refreshes", api.refreshCalls)
	}

	if _, err := m.ReloadProfile(ctx); !apperrors.IsAuthReason(err, apperrors.AuthNoSession) {
		t.Fatalf("ReloadProfile() error = %v, want NO_SESSION", err)
	}
}
