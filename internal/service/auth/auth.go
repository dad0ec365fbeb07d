package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
)

// AuthService turns a credential into a principal. Tokens are minted
// elsewhere; this service only checks them against the user directory.
type AuthService struct {
	userRepo     UserRepo
	tokenService TokenProvider
	log          logger.Logger
}

func NewAuthService(userRepo UserRepo, tokenService TokenProvider, log logger.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokenService: tokenService,
		log:          log,
	}
}

// Authenticate validates token and resolves its principal. The user must
// still exist with the role the token was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.Principal, error) {
	ctx = wrap.WithAction(ctx, "authenticate")

	claims, err := s.tokenService.Validate(ctx, token)
	if err != nil {
		return models.AnonymousPrincipal(), err
	}
	ctx = wrap.WithUserID(ctx, claims.UserID.String())

	user, err := s.userRepo.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return models.AnonymousPrincipal(), wrap.Error(ctx, fmt.Errorf("%w: unknown user", types.ErrInvalidToken))
		}
		return models.AnonymousPrincipal(), wrap.Error(ctx, fmt.Errorf("failed to load user: %w", err))
	}

	if user.Role != claims.Role {
		s.log.Warn(ctx, "token role does not match user", "token_role", claims.Role, "user_role", user.Role)
		return models.AnonymousPrincipal(), wrap.Error(ctx, fmt.Errorf("%w: role changed", types.ErrInvalidToken))
	}

	return claims.Principal(), nil
}

// IssueFor signs a token for an existing user. Used by development tooling.
func (s *AuthService) IssueFor(ctx context.Context, userID uuid.UUID) (*models.AccessToken, error) {
	ctx = wrap.WithUserID(wrap.WithAction(ctx, "issue_token"), userID.String())

	user, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	return s.tokenService.Issue(ctx, user)
}
