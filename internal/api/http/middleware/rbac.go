package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/pkg/authorize"
	pasetotoken "github.com/mediqhq/mediq_backend/pkg/paseto"
)

// RequirePermission checks that the authenticated user's role grants the
// given action on the resource. Row-level ownership is enforced by the
// services, not here.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := pasetotoken.ClaimsFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		err := auth.MustEnforce(c.Context(), authorize.Role(claims.Role), resource, action)
		if err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return fiber.ErrForbidden
			}
			return err
		}

		return c.Next()
	}
}
