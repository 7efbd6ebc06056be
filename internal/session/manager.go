package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/internal/tokenstore"
	"github.com/spec-kit/tablepos/pkg/apperrors"
)

// AuthAPI is the remote side of authentication.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, accessToken string) error
	Profile(ctx context.Context, accessToken string) (domain.User, error)
}

// Store persists the session between runs.
type Store interface {
	Save(ctx context.Context, session domain.Session) error
	Load(ctx context.Context) (domain.Session, error)
	SaveUser(ctx context.Context, user domain.User) error
	Clear(ctx context.Context) error
}

// Option customizes a Manager.
type Option func(*Manager)

// WithRefreshSkew refreshes access tokens that expire within d.
func WithRefreshSkew(d time.Duration) Option {
	return func(m *Manager) { m.skew = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns the signed-in session: login, logout, restore and token refresh.
type Manager struct {
	store  Store
	api    AuthAPI
	logger *zap.Logger
	skew   time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	state   State
	session domain.Session

	refreshMu sync.Mutex
}

// New builds a Manager. Call Restore once at startup.
func New(store Store, api AuthAPI, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		store:  store,
		api:    api,
		logger: logger,
		skew:   30 * time.Second,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads a persisted session. It only runs from the uninitialized state.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateUninitialized {
		m.mu.Unlock()
		return nil
	}
	m.state = StateLoading
	m.mu.Unlock()

	session, loadErr := m.store.Load(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateLoading {
		// a login or logout finished first
		return nil
	}
	if loadErr != nil {
		m.state = StateUnauthenticated
		m.session = domain.Session{}
		if !errors.Is(loadErr, tokenstore.ErrNoSession) {
			m.logger.Warn("session restore failed", zap.Error(loadErr))
			return fmt.Errorf("restore session: %w", loadErr)
		}
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Debug("clear token store", zap.Error(err))
		}
		return nil
	}

	m.session = session
	m.state = StateAuthenticated
	m.logger.Info("session restored", zap.String("user_id", session.User.ID), zap.String("username", session.User.Username))
	return nil
}

// Login exchanges credentials for a session and persists it.
func (m *Manager) Login(ctx context.Context, username, password string) (domain.Session, error) {
	session, err := m.api.Login(ctx, username, password)
	if err != nil {
		return domain.Session{}, loginError(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	m.session = session
	m.state = StateAuthenticated
	m.logger.Info("logged in", zap.String("user_id", session.User.ID), zap.String("role", string(session.User.Role)))
	return session, nil
}

// Logout clears the local session and the token store, then tells the server
// on a best-effort basis. It never fails.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.session.AccessToken
	m.session = domain.Session{}
	m.state = StateUnauthenticated
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("clear token store on logout", zap.Error(err))
	}
	m.mu.Unlock()

	if token == "" {
		return
	}
	if err := m.api.Logout(ctx, token); err != nil {
		m.logger.Warn("remote logout failed", zap.Error(err))
	}
}

// RefreshAccessToken swaps the refresh token for a new pair. Any failure logs
// the user out and returns AuthError{REFRESH_FAILED}.
func (m *Manager) RefreshAccessToken(ctx context.Context) error {
	m.mu.RLock()
	seen := m.session.AccessToken
	m.mu.RUnlock()
	return m.refresh(ctx, seen)
}

// refresh exchanges tokens unless the access token already moved past seen
// while this caller waited for another refresh.
func (m *Manager) refresh(ctx context.Context, seen string) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	m.mu.RLock()
	current, state := m.session, m.state
	m.mu.RUnlock()

	if state == StateAuthenticated && seen != "" && current.AccessToken != seen {
		return nil
	}
	if state != StateAuthenticated || current.RefreshToken == "" {
		return m.failRefresh(ctx, errors.New("no refresh token"))
	}

	access, refresh, err := m.api.Refresh(ctx, current.RefreshToken)
	if err != nil {
		return m.failRefresh(ctx, err)
	}
	next := domain.Session{User: current.User, AccessToken: access, RefreshToken: refresh}

	m.mu.Lock()
	if m.state != StateAuthenticated || m.session.RefreshToken != current.RefreshToken {
		m.mu.Unlock()
		return apperrors.NewAuthError(apperrors.AuthRefreshFailed, "session ended during refresh", nil)
	}
	if err := m.store.Save(ctx, next); err != nil {
		m.mu.Unlock()
		return m.failRefresh(ctx, err)
	}
	m.session = next
	m.mu.Unlock()

	m.logger.Debug("access token refreshed", zap.String("user_id", next.User.ID))
	return nil
}

func (m *Manager) failRefresh(ctx context.Context, cause error) error {
	m.logger.Warn("token refresh failed, logging out", zap.Error(cause))
	m.Logout(ctx)
	return apperrors.NewAuthError(apperrors.AuthRefreshFailed, "", cause)
}

// AccessToken returns a bearer token, refreshing first when it is about to expire.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	token, state := m.session.AccessToken, m.state
	m.mu.RUnlock()

	if state != StateAuthenticated || token == "" {
		return "", apperrors.NewAuthError(apperrors.AuthNoSession, "", nil)
	}
	if !m.expiresSoon(token) {
		return token, nil
	}
	if err := m.refresh(ctx, token); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.AccessToken, nil
}

// Authorized runs fn with a bearer token. A 401 triggers one refresh and one retry.
// Without a session fn runs once with an empty token and the backend decides.
func (m *Manager) Authorized(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	token, err := m.AccessToken(ctx)
	if apperrors.IsAuthReason(err, apperrors.AuthNoSession) {
		return fn(ctx, "")
	}
	if err != nil {
		return err
	}
	err = fn(ctx, token)
	if !apperrors.IsUnauthorized(err) {
		return err
	}

	if err := m.refresh(ctx, token); err != nil {
		return err
	}
	token, err = m.AccessToken(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, token)
}

// ReloadProfile fetches the signed-in user and persists it.
func (m *Manager) ReloadProfile(ctx context.Context) (domain.User, error) {
	if !m.IsAuthenticated() {
		return domain.User{}, apperrors.NewAuthError(apperrors.AuthNoSession, "", nil)
	}
	var user domain.User
	err := m.Authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		user, err = m.api.Profile(ctx, token)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated {
		return domain.User{}, apperrors.NewAuthError(apperrors.AuthNoSession, "", nil)
	}
	if err := m.store.SaveUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	m.session.User = user
	return user, nil
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a session is held.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// Session returns a copy of the current session.
func (m *Manager) Session() (domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, m.state == StateAuthenticated
}

func (m *Manager) expiresSoon(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !m.now().Add(m.skew).Before(claims.ExpiresAt.Time)
}

func loginError(err error) error {
	appErr, ok := apperrors.As(err)
	if !ok {
		return err
	}
	switch appErr.Kind {
	case apperrors.KindNetwork:
		return apperrors.NewAuthError(apperrors.AuthNetwork, "", err)
	case apperrors.KindMalformedResponse, apperrors.KindValidation:
		return apperrors.NewAuthError(apperrors.AuthMalformedResponse, "", err)
	case apperrors.KindRemote:
		if appErr.StatusCode == http.StatusUnauthorized || mentionsCredentials(appErr.Message) {
			return apperrors.NewAuthError(apperrors.AuthInvalidCredentials, appErr.Message, err)
		}
	}
	return err
}

func mentionsCredentials(msg string) bool {
	msg = strings.ToLower(msg)
	for _, word := range []string{"credential", "password", "username"} {
		if strings.Contains(msg, word) {
			return true
		}
	}
	return false
}
