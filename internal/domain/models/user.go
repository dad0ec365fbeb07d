package models

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
)

// User is a record of the user directory.
type User struct {
	ID           uuid.UUID          `json:"id" yaml:"id"`
	Name         string             `json:"name" yaml:"name"`
	Email        string             `json:"email,omitempty" yaml:"email"`
	Phone        string             `json:"phone,omitempty" yaml:"phone"`
	Role         types.UserRole     `json:"role" yaml:"role"`
	Availability types.Availability `json:"availability,omitempty" yaml:"availability"`
	Vehicle      string             `json:"vehicle,omitempty" yaml:"vehicle"`
	CreatedAt    time.Time          `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time          `json:"updated_at,omitzero" yaml:"-"`
}

func (u *User) Summary() *UserSummary {
	s := &UserSummary{ID: u.ID, Name: u.Name, Phone: u.Phone}
	if u.Role == types.RoleDriver {
		s.Vehicle = u.Vehicle
	}
	return s
}

// Principal is the authenticated identity attached to a request or connection.
type Principal struct {
	ID   uuid.UUID
	Role types.UserRole
}

func AnonymousPrincipal() Principal {
	return Principal{}
}

func (p Principal) IsAnonymous() bool {
	return p.ID == uuid.Nil
}

func (p Principal) IsDriver() bool    { return p.Role == types.RoleDriver }
func (p Principal) IsPassenger() bool { return p.Role == types.RolePassenger }

type principalCtxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the principal of ctx or the anonymous one.
func PrincipalFromContext(ctx context.Context) Principal {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	if !ok {
		return AnonymousPrincipal()
	}
	return p
}
