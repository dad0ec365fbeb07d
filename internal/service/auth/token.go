package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
)

// TokenService signs and validates HS256 access tokens.
type TokenService struct {
	AccessTTL time.Duration
	secret    string
	now       func() time.Time
}

func NewTokenService(secret string, accessTTL time.Duration) *TokenService {
	return &TokenService{
		AccessTTL: accessTTL,
		secret:    secret,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Issue signs an access token for user.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (*models.AccessToken, error) {
	ctx = wrap.WithAction(ctx, "issue_token")
	if user == nil {
		return nil, wrap.Error(ctx, errors.New("user is nil"))
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.AccessTTL)

	token, err := s.signClaims(NewAccessClaim(user, issuedAt, s.AccessTTL, uuid.New()))
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to sign token: %w", err))
	}

	return &models.AccessToken{Token: token, ExpiresAt: expiresAt}, nil
}

// Validate parses token and returns its claims. Any failure is reported as
// an unauthorized error.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.Claims, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, types.ErrInvalidToken
		}
		return []byte(s.secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, types.ErrExpiredToken)
		}
		return nil, wrap.Error(ctx, types.ErrInvalidToken)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, wrap.Error(ctx, types.ErrInvalidToken)
	}

	userID, err := uuidClaim(mc, "user_id")
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}
	tokenID, err := uuidClaim(mc, "jti")
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	role, _ := mc["role"].(string)
	if !types.UserRole(role).IsValid() {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: unknown role", types.ErrInvalidToken))
	}

	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, wrap.Error(ctx, types.ErrInvalidToken)
	}

	return &models.Claims{
		UserID:    userID,
		TokenID:   tokenID,
		Role:      types.UserRole(role),
		ExpiresAt: exp.Time,
	}, nil
}

func uuidClaim(mc jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, _ := mc[key].(string)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: missing '%s' claim", types.ErrInvalidToken, key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid '%s' claim", types.ErrInvalidToken, key)
	}
	return id, nil
}

func (s *TokenService) signClaims(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

func NewAccessClaim(user *models.User, issuedAt time.Time, accessTTL time.Duration, tokenID uuid.UUID) jwt.Claims {
	return jwt.MapClaims{
		"jti":     tokenID.String(),
		"user_id": user.ID.String(),
		"role":    user.Role.String(),
		"iat":     issuedAt.Unix(),
		"exp":     issuedAt.Add(accessTTL).Unix(),
	}
}
