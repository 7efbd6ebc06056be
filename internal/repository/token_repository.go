package repository

import (
	"context"
	"sync"
	"time"
)

// RevokedTokenRepository tracks refresh tokens that may no longer be exchanged.
type RevokedTokenRepository interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type revokedTokenRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewRevokedTokenRepository returns an in-memory implementation.
func NewRevokedTokenRepository() RevokedTokenRepository {
	return &revokedTokenRepository{revoked: make(map[string]time.Time)}
}

func (r *revokedTokenRepository) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, exp := range r.revoked {
		if exp.Before(now) {
			delete(r.revoked, id)
		}
	}
	r.revoked[tokenID] = until
	return nil
}

func (r *revokedTokenRepository) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}
