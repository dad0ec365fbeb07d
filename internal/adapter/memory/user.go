package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

// UserRepo is an in-process user directory.
type UserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewUserRepo(users ...models.User) *UserRepo {
	r := &UserRepo{users: make(map[uuid.UUID]models.User)}
	for _, u := range users {
		_ = r.Upsert(context.Background(), &u)
	}
	return r
}

func (r *UserRepo) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return &u, nil
}

// Upsert inserts or replaces user.
func (r *UserRepo) Upsert(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := r.users[user.ID]; ok {
		user.CreatedAt = existing.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepo) SetAvailability(_ context.Context, id uuid.UUID, availability types.Availability) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	u.Availability = availability
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return &u, nil
}
