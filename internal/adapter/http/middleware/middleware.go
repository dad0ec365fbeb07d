package middleware

import (
	"context"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
)

type AuthService interface {
	Authenticate(ctx context.Context, token string) (models.Principal, error)
}

// Middleware holds what the HTTP chain needs: the authenticator, the logger
// and the service name used as the metrics label.
type Middleware struct {
	service string
	auth    AuthService
	log     logger.Logger
}

func NewMiddleware(service string, auth AuthService, log logger.Logger) *Middleware {
	return &Middleware{
		service: service,
		auth:    auth,
		log:     log,
	}
}
