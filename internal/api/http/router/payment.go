package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/api/http/handler"
	"github.com/mediqhq/mediq_backend/internal/api/http/middleware"
	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/pkg/authorize"
)

func (r *Router) registerPaymentRoutes(
	api fiber.Router,
	ph *handler.PaymentHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	// The gateway redirects the patient's browser here without a token.
	api.Get("/payments/verify", ph.Verify)

	payments := api.Group("/payments", authRequired)

	// History resolves the caller's own patient record; doctors read
	// payments through /consultations/:id/payments instead.
	payments.Get("/", middleware.RequireRole(model.RolePatient), ph.History)
	payments.Post("/", requirePerm(authorize.ResourcePayment, authorize.ActionCreate), ph.Initiate)
	payments.Patch("/:id/confirm-cash", requirePerm(authorize.ResourcePayment, authorize.ActionUpdate), ph.ConfirmCash)
}
