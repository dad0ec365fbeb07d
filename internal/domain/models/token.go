package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims are the fields carried by an access token.
type Claims struct {
	UserID    uuid.UUID
	TokenID   uuid.UUID
	Role      types.UserRole
	ExpiresAt time.Time
}

func (c *Claims) Principal() Principal {
	return Principal{ID: c.UserID, Role: c.Role}
}
