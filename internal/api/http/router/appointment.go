package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/api/http/handler"
	"github.com/mediqhq/mediq_backend/pkg/authorize"
)

func (r *Router) registerAppointmentRoutes(
	api fiber.Router,
	ah *handler.AppointmentHandler,
	ch *handler.ConsultationHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	appts := api.Group("/appointments", authRequired)

	appts.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionList), ah.List)
	appts.Post("/", requirePerm(authorize.ResourceAppointment, authorize.ActionCreate), ah.Book)

	a := appts.Group("/:id")
	a.Get("/", requirePerm(authorize.ResourceAppointment, authorize.ActionRead), ah.GetByID)
	a.Patch("/accept", requirePerm(authorize.ResourceAppointment, authorize.ActionUpdate), ah.Accept)
	a.Patch("/decline", requirePerm(authorize.ResourceAppointment, authorize.ActionUpdate), ah.Decline)
	a.Patch("/cancel", requirePerm(authorize.ResourceAppointment, authorize.ActionUpdate), ah.Cancel)
	a.Patch("/reschedule", requirePerm(authorize.ResourceAppointment, authorize.ActionUpdate), ah.Reschedule)

	a.Post("/consultation", requirePerm(authorize.ResourceConsultation, authorize.ActionCreate), ch.Complete)
	a.Get("/consultation", requirePerm(authorize.ResourceConsultation, authorize.ActionRead), ch.GetByAppointment)
}
