package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	wrap "github.com/hamza-safwan/mini-ride-booking/pkg/logger/wrapper"
)

// Auth validates the bearer token and injects the principal into context.
// Requests without a header continue as anonymous; a bad token is a 401.
func (h *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := wrap.WithAction(r.Context(), "authenticate")

		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r.WithContext(models.WithPrincipal(r.Context(), models.AnonymousPrincipal())))
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}

		principal, err := h.auth.Authenticate(ctx, token)
		if err != nil {
			h.log.Warn(wrap.ErrorCtx(ctx, err), "failed to authenticate user", "error", err.Error())
			unauthorized(w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(models.WithPrincipal(wrap.WithUserID(r.Context(), principal.ID.String()), principal)))
	})
}

// RequireRoles lets through authenticated principals holding one of roles.
// With no roles any authenticated principal passes.
func (h *Middleware) RequireRoles(next http.HandlerFunc, allowedRoles ...types.UserRole) http.Handler {
	allowed := make(map[types.UserRole]bool, len(allowedRoles))
	for _, role := range allowedRoles {
		allowed[role] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := models.PrincipalFromContext(r.Context())
		if p.IsAnonymous() {
			unauthorized(w, "authorization required")
			return
		}
		if len(allowed) > 0 && !allowed[p.Role] {
			errorResponse(w, http.StatusForbidden, types.ErrRoleNotAllowed.Error(), types.KindForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractBearerToken returns the credential of an "Authorization: Bearer <token>" header.
func extractBearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return token, nil
}
