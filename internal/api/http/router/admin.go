package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/api/http/handler"
	"github.com/mediqhq/mediq_backend/internal/api/http/middleware"
	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/pkg/authorize"
)

func (r *Router) registerAdminRoutes(
	api fiber.Router,
	ah *handler.AdminHandler,
	authRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	// Catalog listings are readable by any authenticated user.
	api.Get("/departments", authRequired, requirePerm(authorize.ResourceDoctor, authorize.ActionList), ah.ListDepartments)
	api.Get("/specialties", authRequired, requirePerm(authorize.ResourceDoctor, authorize.ActionList), ah.ListSpecialties)

	admin := api.Group("/admin", authRequired, middleware.RequireRole(model.RoleAdmin))

	admin.Get("/dashboard", requirePerm(authorize.ResourceDashboard, authorize.ActionRead), ah.Dashboard)
	admin.Post("/doctors", requirePerm(authorize.ResourceDoctor, authorize.ActionCreate), ah.CreateDoctor)
	admin.Get("/patients", requirePerm(authorize.ResourcePatient, authorize.ActionList), ah.ListPatients)

	admin.Post("/departments", requirePerm(authorize.ResourceDepartment, authorize.ActionCreate), ah.CreateDepartment)
	admin.Patch("/departments/:id", requirePerm(authorize.ResourceDepartment, authorize.ActionUpdate), ah.UpdateDepartment)
	admin.Delete("/departments/:id", requirePerm(authorize.ResourceDepartment, authorize.ActionDelete), ah.DeleteDepartment)

	admin.Post("/specialties", requirePerm(authorize.ResourceSpecialty, authorize.ActionCreate), ah.CreateSpecialty)
	admin.Patch("/specialties/:id", requirePerm(authorize.ResourceSpecialty, authorize.ActionUpdate), ah.UpdateSpecialty)
	admin.Delete("/specialties/:id", requirePerm(authorize.ResourceSpecialty, authorize.ActionDelete), ah.DeleteSpecialty)
}
