package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"

	pasetotoken "github.com/mediqhq/mediq_backend/pkg/paseto"
	"github.com/mediqhq/mediq_backend/pkg/reqctx"
)

const LocalActor = "actor"

// AuthRequired validates a Bearer PASETO access token and checks that its
// session is still alive in Redis. On success the claims and the derived
// actor are stored in locals.
func AuthRequired(mgr *pasetotoken.Manager, rdb *redis.Client) fiber.Handler {
	return func(c fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" {
			return fiber.ErrUnauthorized
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.ErrUnauthorized
		}

		claims, err := mgr.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.ErrUnauthorized
		}

		// A valid token whose session was logged out is rejected.
		if claims.SessionID != "" {
			key := "session:" + claims.SessionID
			if err := rdb.Get(c.Context(), key).Err(); err != nil {
				return fiber.ErrUnauthorized
			}
		}

		c.Locals(pasetotoken.CtxKeyClaims, claims)
		c.Locals(LocalActor, &reqctx.Actor{
			Role:      claims.Role,
			ID:        claims.UserID,
			SessionID: claims.SessionID,
		})
		return c.Next()
	}
}

// ActorFromFiber retrieves the authenticated actor stored by AuthRequired.
func ActorFromFiber(c fiber.Ctx) (*reqctx.Actor, bool) {
	actor, ok := c.Locals(LocalActor).(*reqctx.Actor)
	return actor, ok && actor != nil
}
