package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/api/http/handler"
	"github.com/mediqhq/mediq_backend/internal/api/http/middleware"
	"github.com/mediqhq/mediq_backend/internal/model"
)

// Everything under /patients/me acts on the caller's own record. The role
// gate matters: actor IDs are per-role tables, so a doctor with the same
// numeric id must not resolve to this patient.
func (r *Router) registerPatientRoutes(api fiber.Router, ph *handler.PatientHandler, authRequired fiber.Handler) {
	me := api.Group("/patients/me", authRequired, middleware.RequireRole(model.RolePatient))

	me.Get("/", ph.Me)
	me.Patch("/", ph.UpdateMe)
	me.Put("/picture", ph.UploadPicture)
	me.Get("/dashboard", ph.Dashboard)
}
