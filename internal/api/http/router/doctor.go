package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/api/http/handler"
	"github.com/mediqhq/mediq_backend/internal/api/http/middleware"
	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/pkg/authorize"
)

func (r *Router) registerDoctorRoutes(
	api fiber.Router,
	dh *handler.DoctorHandler,
	sh *handler.ScheduleHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	doctors := api.Group("/doctors", authRequired)

	doctors.Get("/", requirePerm(authorize.ResourceDoctor, authorize.ActionList), dh.List)

	// Own-profile routes act on the caller. Actor IDs are per-role tables,
	// so the role gate keeps a patient with the same numeric id out.
	me := doctors.Group("/me", middleware.RequireRole(model.RoleDoctor))
	me.Patch("/", dh.UpdateMe)
	me.Put("/picture", dh.UploadPicture)
	me.Get("/statistics", requirePerm(authorize.ResourceDashboard, authorize.ActionRead), dh.Statistics)
	me.Get("/patients", requirePerm(authorize.ResourcePatient, authorize.ActionList), dh.Patients)

	d := doctors.Group("/:id")
	d.Get("/", requirePerm(authorize.ResourceDoctor, authorize.ActionRead), dh.GetByID)
	d.Get("/schedule", requirePerm(authorize.ResourceSchedule, authorize.ActionRead), sh.Get)
	d.Put("/schedule", requirePerm(authorize.ResourceSchedule, authorize.ActionUpdate), sh.Upsert)
	d.Get("/availability", requirePerm(authorize.ResourceSchedule, authorize.ActionRead), sh.Availability)
}
