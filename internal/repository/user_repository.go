package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/spec-kit/tablepos/internal/domain"
)

// UserRecord is a stored account.
type UserRecord struct {
	domain.User
	PasswordHash string
}

// UserRepository defines access to demo accounts.
type UserRepository interface {
	Create(ctx context.Context, user *UserRecord) error
	GetByID(ctx context.Context, id string) (*UserRecord, error)
	GetByUsername(ctx context.Context, username string) (*UserRecord, error)
}

type userRepository struct {
	mu    sync.RWMutex
	byID  map[string]*UserRecord
	order []string
}

// NewUserRepository returns an in-memory implementation.
func NewUserRepository() UserRepository {
	return &userRepository{byID: make(map[string]*UserRecord)}
}

func (r *userRepository) Create(_ context.Context, user *UserRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = nextSerial(r.order)
	}
	stored := *user
	r.byID[user.ID] = &stored
	r.order = append(r.order, user.ID)
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *user
	return &out, nil
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if user := r.byID[id]; strings.EqualFold(user.Username, username) {
			out := *user
			return &out, nil
		}
	}
	return nil, ErrNotFound
}
