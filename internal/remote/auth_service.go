package remote

import (
	"context"
	"errors"
	"net/http"

	"github.com/spec-kit/tablepos/internal/api/dto"
	"github.com/spec-kit/tablepos/internal/domain"
	"github.com/spec-kit/tablepos/pkg/apperrors"
)

// AuthService calls the /auth endpoints.
type AuthService struct {
	client *Client
}

// NewAuthService builds the service.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// Login exchanges credentials for a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Session, error) {
	var resp dto.LoginResponse
	err := s.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   dto.LoginRequest{Username: username, Password: password},
	}, &resp)
	if err != nil {
		return domain.Session{}, err
	}
	if resp.User == nil || resp.AccessToken == "" || resp.RefreshToken == "" {
		return domain.Session{}, apperrors.NewMalformedResponse(errors.New("login response missing user or tokens"))
	}
	user, err := toUser(*resp.User)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{User: user, AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	var pair dto.TokenPair
	err := s.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Body:   dto.RefreshRequest{RefreshToken: refreshToken},
	}, &pair)
	if err != nil {
		return "", "", err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return "", "", apperrors.NewMalformedResponse(errors.New("refresh response missing tokens"))
	}
	return pair.AccessToken, pair.RefreshToken, nil
}

// Logout invalidates the session on the server.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.client.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/logout", Token: token}, nil)
}

// Profile fetches the signed-in user.
func (s *AuthService) Profile(ctx context.Context, token string) (domain.User, error) {
	var wire dto.UserWire
	if err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/profile", Token: token}, &wire); err != nil {
		return domain.User{}, err
	}
	return toUser(wire)
}
