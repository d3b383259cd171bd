package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// RequireAuthenticated ensures the caller holds a valid session.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !PrincipalFromContext(c).Authenticated() {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireLevel ensures the caller's permission level is at least required.
func RequireLevel(required Level) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := Require(PrincipalFromContext(c).Account, required); err != nil {
			return err
		}
		return c.Next()
	}
}
