package pasetotoken

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/config"
)

// CtxKeyClaims is where the auth middleware stashes verified claims on the
// request.
const CtxKeyClaims = "auth.claims"

func ClaimsFromFiber(c fiber.Ctx) (*Claims, bool) {
	v := c.Locals(CtxKeyClaims)
	if v == nil {
		return nil, false
	}
	cl, ok := v.(*Claims)
	return cl, ok
}

// NewPasetoManager creates a new PASETO manager from config.
// Returns an error if the configuration is invalid.
func NewPasetoManager(cfg *config.Config) (*Manager, error) {
	p := cfg.Authentication.Paseto

	return New(Config{
		Issuer:    p.Issuer,
		Audience:  p.Audience,
		AccessTTL: time.Duration(p.AccessTTLMinutes) * time.Minute,
		Implicit:  nil,
	}, p.LocalKeyHex)
}
