package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
)

type UserRepo interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type TokenProvider interface {
	Issue(ctx context.Context, user *models.User) (*models.AccessToken, error)
	Validate(ctx context.Context, token string) (*models.Claims, error)
}
