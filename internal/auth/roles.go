package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/Sai1305/customer-support-ticketing-system/pkg/util/errorutil"
)

// RequireAuthenticated ensures a principal has been resolved.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller holds the admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.Role.IsAdmin() {
			return apperrors.NewForbidden("admin privileges required")
		}
		return c.Next()
	}
}
