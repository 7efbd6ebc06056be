package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/tablepos/internal/domain"
)

// Keys under which the session is persisted.
const (
	KeyAccessToken  = "pos.accessToken"
	KeyRefreshToken = "pos.refreshToken"
	KeyUser         = "pos.user"
)

var sessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// ErrNoSession means the store does not hold a complete, parseable session.
var ErrNoSession = errors.New("tokenstore: no persisted session")

// Store persists the session as three key-value entries.
type Store struct {
	kv     KV
	logger *zap.Logger
	ping   func(ctx context.Context) error
}

// New builds a Store over kv.
func New(kv KV, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger}
}

// Ping checks the backing connection. Local backends are always ready.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) withPing(fn func(ctx context.Context) error) *Store {
	s.ping = fn
	return s
}

// Save writes all three entries in one Set call.
func (s *Store) Save(ctx context.Context, session domain.Session) error {
	if !session.Valid() {
		return errors.New("tokenstore: refusing to persist an incomplete session")
	}
	user, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Set(ctx, map[string]string{
		KeyAccessToken:  session.AccessToken,
		KeyRefreshToken: session.RefreshToken,
		KeyUser:         string(user),
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Load returns the persisted session, or ErrNoSession when any part is missing or unreadable.
func (s *Store) Load(ctx context.Context) (domain.Session, error) {
	values, err := s.kv.Get(ctx, sessionKeys...)
	if err != nil {
		if unreadable(err) {
			s.logger.Warn("unreadable token store", zap.Error(err))
			return domain.Session{}, ErrNoSession
		}
		return domain.Session{}, fmt.Errorf("read session: %w", err)
	}

	access, hasAccess := values[KeyAccessToken]
	refresh, hasRefresh := values[KeyRefreshToken]
	rawUser, hasUser := values[KeyUser]
	if !hasAccess || !hasRefresh || !hasUser {
		if hasAccess || hasRefresh || hasUser {
			s.logger.Warn("partial session in token store",
				zap.Bool("access_token", hasAccess),
				zap.Bool("refresh_token", hasRefresh),
				zap.Bool("user", hasUser))
		}
		return domain.Session{}, ErrNoSession
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.logger.Warn("unparseable user in token store", zap.Error(err))
		return domain.Session{}, ErrNoSession
	}

	session := domain.Session{User: user, AccessToken: access, RefreshToken: refresh}
	if !session.Valid() {
		return domain.Session{}, ErrNoSession
	}
	return session, nil
}

// SaveUser replaces only the persisted user record.
func (s *Store) SaveUser(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.kv.Set(ctx, map[string]string{KeyUser: string(raw)})
}

// Clear removes every session entry.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, sessionKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Empty reports whether no session entry remains.
func (s *Store) Empty(ctx context.Context) (bool, error) {
	values, err := s.kv.Get(ctx, sessionKeys...)
	if err != nil {
		return false, err
	}
	return len(values) == 0, nil
}
