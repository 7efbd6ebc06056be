package service

import (
	"context"
	"errors"

	"github.com/spec-kit/tablepos/internal/auth"
	"github.com/spec-kit/tablepos/internal/config"
	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/internal/repository"
)

// AuthService coordinates login, token rotation and logout for the demo backend.
type AuthService struct {
	users      repository.UserRepository
	revoked    repository.RevokedTokenRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	RevokedRepo repository.RevokedTokenRepository
	Tokens      *auth.TokenManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.BackendConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		revoked:    deps.RevokedRepo,
		tokenMgr:   deps.Tokens,
		bcryptCost: cfg.BcryptCost,
	}
}

// AuthResult is a signed-in user with a fresh token pair.
type AuthResult struct {
	User         domain.User
	AccessToken  string
	RefreshToken string
}

// Seed stores an account with a hashed password.
func (s *AuthService) Seed(ctx context.Context, user domain.User, password string) error {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.Create(ctx, &repository.UserRecord{User: user, PasswordHash: hash})
}

// Login authenticates by username and password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.PasswordMatches(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	pair, err := s.tokenMgr.IssuePair(user.User)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user.User, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Refresh rotates a refresh token. The presented token is revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokenMgr.ParseToken(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return nil, err
	}
	pair, err := s.tokenMgr.IssuePair(user.User)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user.User, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Logout revokes the refresh token when one is presented. Access tokens expire on their own.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokenMgr.ParseToken(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
