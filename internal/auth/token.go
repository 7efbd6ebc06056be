package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/tablepos/internal/domain"
)

// TokenType distinguishes access from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// ErrWrongTokenType is returned when a refresh token is used as an access token or vice versa.
var ErrWrongTokenType = errors.New("wrong token type")

// TokenManager handles issuing and validating JWT tokens for the demo backend.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Claims describes JWT payload.
type Claims struct {
	Role domain.Role `json:"role,omitempty"`
	Type TokenType   `json:"typ"`
	jwt.RegisteredClaims
}

// IssuedPair is a freshly signed access/refresh pair.
type IssuedPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshID        string
	RefreshExpiresAt time.Time
}

// IssuePair signs an access and a refresh token for the user.
func (tm *TokenManager) IssuePair(user domain.User) (IssuedPair, error) {
	access, _, _, err := tm.sign(user, TokenAccess, tm.accessTTL)
	if err != nil {
		return IssuedPair{}, err
	}
	refresh, refreshID, refreshExp, err := tm.sign(user, TokenRefresh, tm.refreshTTL)
	if err != nil {
		return IssuedPair{}, err
	}
	return IssuedPair{AccessToken: access, RefreshToken: refresh, RefreshID: refreshID, RefreshExpiresAt: refreshExp}, nil
}

func (tm *TokenManager) sign(user domain.User, typ TokenType, ttl time.Duration) (string, string, time.Time, error) {
	now := tm.now()
	expiresAt := now.Add(ttl)
	id := uuid.NewString()
	claims := &Claims{
		Role: user.Role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return tokenString, id, expiresAt, nil
}

// ParseToken validates a token of the expected type and returns its claims.
func (tm *TokenManager) ParseToken(tokenStr string, want TokenType) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Type != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
