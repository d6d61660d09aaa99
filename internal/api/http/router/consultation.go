package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/api/http/handler"
	"github.com/mediqhq/mediq_backend/pkg/authorize"
)

func (r *Router) registerConsultationRoutes(
	api fiber.Router,
	ch *handler.ConsultationHandler,
	ph *handler.PaymentHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	cons := api.Group("/consultations", authRequired)

	cons.Get("/", requirePerm(authorize.ResourceConsultation, authorize.ActionList), ch.List)

	c := cons.Group("/:id")
	c.Get("/", requirePerm(authorize.ResourceConsultation, authorize.ActionRead), ch.GetByID)
	c.Patch("/fee", requirePerm(authorize.ResourceConsultation, authorize.ActionUpdate), ch.SetFee)
	c.Post("/notes", requirePerm(authorize.ResourceConsultation, authorize.ActionUpdate), ch.AddNote)
	c.Get("/payments", requirePerm(authorize.ResourcePayment, authorize.ActionList), ph.ListForConsultation)
}
