package middleware

import (
	"github.com/gofiber/fiber/v3"

	pasetotoken "github.com/mediqhq/mediq_backend/pkg/paseto"
)

// RequireRole restricts a route group to the given roles. Coarser than
// RequirePermission; used for surfaces that belong to one role entirely,
// like the back office.
func RequireRole(roles ...string) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := pasetotoken.ClaimsFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		for _, role := range roles {
			if claims.Role == role {
				return c.Next()
			}
		}
		return fiber.ErrForbidden
	}
}
