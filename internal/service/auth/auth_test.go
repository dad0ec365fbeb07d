package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hamza-safwan/mini-ride-booking/internal/adapter/memory"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/logger"
)

const secret = "test-secret"

func newAuth(t *testing.T, users ...models.User) (*AuthService, *TokenService, *memory.UserRepo) {
	t.Helper()
	repo := memory.NewUserRepo(users...)
	tokens := NewTokenService(secret, time.Hour)
	return NewAuthService(repo, tokens, logger.Discard()), tokens, repo
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	driver := models.User{ID: uuid.New(), Name: "Bilal", Role: types.RoleDriver}
	svc, _, _ := newAuth(t, driver)

	token, err := svc.IssueFor(ctx, driver.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	p, err := svc.Authenticate(ctx, token.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.ID != driver.ID || p.Role != types.RoleDriver {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	ctx := context.Background()
	user := models.User{ID: uuid.New(), Role: types.RolePassenger}
	svc, tokens, repo := newAuth(t, user)

	good, err := tokens.Issue(ctx, &user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	expired := NewTokenService(secret, -time.Minute)
	old, err := expired.Issue(ctx, &user)
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	foreign, err := NewTokenService("other-secret", time.Hour).Issue(ctx, &user)
	if err != nil {
		t.Fatalf("issue foreign: %v", err)
	}

	ghost := models.User{ID: uuid.New(), Role: types.RolePassenger}
	unknown, err := tokens.Issue(ctx, &ghost)
	if err != nil {
		t.Fatalf("issue unknown: %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": user.ID.String(),
		"jti":     uuid.NewString(),
		"role":    "passenger",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
		{name: "expired", token: old.Token},
		{name: "wrong secret", token: foreign.Token},
		{name: "unknown user", token: unknown.Token},
		{name: "unsigned", token: unsigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.Authenticate(ctx, tt.token)
			if !errors.Is(err, types.ErrUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if !p.IsAnonymous() {
				t.Fatalf("failed authentication must yield no principal")
			}
		})
	}

	// Role changed after the token was issued.
	user.Role = types.RoleDriver
	if err := repo.Upsert(ctx, &user); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.Authenticate(ctx, good.Token); !errors.Is(err, types.ErrUnauthorized) {
		t.Fatalf("stale role must be refused, got %v", err)
	}
}

func TestValidate_ExpiredKind(t *testing.T) {
	user := models.User{ID: uuid.New(), Role: types.RoleDriver}
	tokens := NewTokenService(secret, -time.Second)
	tok, err := tokens.Issue(context.Background(), &user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := tokens.Validate(context.Background(), tok.Token); !errors.Is(err, types.ErrExpiredToken) {
		t.Fatalf("expected expired token, got %v", err)
	}
}
