package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/Sai1305/customer-support-ticketing-system/internal/authz"
	"github.com/Sai1305/customer-support-ticketing-system/internal/domain"
	"github.com/Sai1305/customer-support-ticketing-system/internal/repository"
	apperrors "github.com/Sai1305/customer-support-ticketing-system/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. The actor is resolved once
// per request here and passed explicitly into core calls.
type Principal struct {
	User   *domain.User
	Claims *Claims
}

// Actor converts the principal into a policy actor.
func (p *Principal) Actor() *authz.Actor {
	if p == nil || p.User == nil {
		return nil
	}
	return &authz.Actor{UserID: p.User.ID, Role: p.User.Role}
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	sessions TokenRevoker
	users    repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, sessions TokenRevoker, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, sessions: sessions, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	if m.sessions != nil && m.sessions.IsRevoked(c.UserContext(), claims.ID) {
		return apperrors.NewUnauthorized("session ended")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user, Claims: claims})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
