package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/service/admin"
	"github.com/mediqhq/mediq_backend/internal/service/auth"
)

type AdminHandler struct {
	svc admin.Service
}

func NewAdminHandler(svc admin.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func mapAdminError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, admin.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, admin.ErrEmailAlreadyExists),
		errors.Is(err, admin.ErrNameAlreadyExists),
		errors.Is(err, admin.ErrInUse):
		return conflict(c, err.Error())
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidPhone),
		errors.Is(err, auth.ErrPasswordTooShort):
		return badRequest(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(c fiber.Ctx) error {
	d, err := h.svc.Dashboard(c.Context())
	if err != nil {
		return mapAdminError(c, err)
	}
	return ok(c, d)
}

// POST /api/v1/admin/doctors
func (h *AdminHandler) CreateDoctor(c fiber.Ctx) error {
	var body struct {
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		Email        string `json:"email"`
		Phone        string `json:"phone"`
		Gender       string `json:"gender"`
		Password     string `json:"password"`
		DepartmentID *uint  `json:"department_id"`
		SpecialtyID  *uint  `json:"specialty_id"`
		Bio          string `json:"bio"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	d, err := h.svc.CreateDoctor(c.Context(), admin.CreateDoctorRequest{
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		Email:        body.Email,
		Phone:        body.Phone,
		Gender:       body.Gender,
		Password:     body.Password,
		DepartmentID: body.DepartmentID,
		SpecialtyID:  body.SpecialtyID,
		Bio:          body.Bio,
	})
	if err != nil {
		return mapAdminError(c, err)
	}
	return created(c, d)
}

// GET /api/v1/admin/patients
func (h *AdminHandler) ListPatients(c fiber.Ctx) error {
	patients, err := h.svc.ListPatients(c.Context())
	if err != nil {
		return mapAdminError(c, err)
	}
	return ok(c, patients)
}

// ---------------------------------------------------------------------------
// Departments
// ---------------------------------------------------------------------------

// GET /api/v1/departments
func (h *AdminHandler) ListDepartments(c fiber.Ctx) error {
	out, err := h.svc.ListDepartments(c.Context())
	if err != nil {
		return mapAdminError(c, err)
	}
	return ok(c, out)
}

// POST /api/v1/admin/departments
func (h *AdminHandler) CreateDepartment(c fiber.Ctx) error {
	return h.createCatalog(c, func(req admin.CatalogRequest) (any, error) {
		return h.svc.CreateDepartment(c.Context(), req)
	})
}

// PATCH /api/v1/admin/departments/:id
func (h *AdminHandler) UpdateDepartment(c fiber.Ctx) error {
	return h.updateCatalog(c, func(id uint, req admin.CatalogRequest) (any, error) {
		return h.svc.UpdateDepartment(c.Context(), id, req)
	})
}

// DELETE /api/v1/admin/departments/:id
func (h *AdminHandler) DeleteDepartment(c fiber.Ctx) error {
	id, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid department id")
	}
	if err := h.svc.DeleteDepartment(c.Context(), id); err != nil {
		return mapAdminError(c, err)
	}
	return noContent(c)
}

// ---------------------------------------------------------------------------
// Specialties
// ---------------------------------------------------------------------------

// GET /api/v1/specialties
func (h *AdminHandler) ListSpecialties(c fiber.Ctx) error {
	out, err := h.svc.ListSpecialties(c.Context())
	if err != nil {
		return mapAdminError(c, err)
	}
	return ok(c, out)
}

// POST /api/v1/admin/specialties
func (h *AdminHandler) CreateSpecialty(c fiber.Ctx) error {
	return h.createCatalog(c, func(req admin.CatalogRequest) (any, error) {
		return h.svc.CreateSpecialty(c.Context(), req)
	})
}

// PATCH /api/v1/admin/specialties/:id
func (h *AdminHandler) UpdateSpecialty(c fiber.Ctx) error {
	return h.updateCatalog(c, func(id uint, req admin.CatalogRequest) (any, error) {
		return h.svc.UpdateSpecialty(c.Context(), id, req)
	})
}

// DELETE /api/v1/admin/specialties/:id
func (h *AdminHandler) DeleteSpecialty(c fiber.Ctx) error {
	id, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid specialty id")
	}
	if err := h.svc.DeleteSpecialty(c.Context(), id); err != nil {
		return mapAdminError(c, err)
	}
	return noContent(c)
}

func (h *AdminHandler) createCatalog(c fiber.Ctx, create func(admin.CatalogRequest) (any, error)) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Name == "" {
		return badRequest(c, "name is required")
	}

	out, err := create(admin.CatalogRequest{Name: body.Name, Description: body.Description})
	if err != nil {
		return mapAdminError(c, err)
	}
	return created(c, out)
}

func (h *AdminHandler) updateCatalog(c fiber.Ctx, update func(uint, admin.CatalogRequest) (any, error)) error {
	id, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid id")
	}

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	out, err := update(id, admin.CatalogRequest{Name: body.Name, Description: body.Description})
	if err != nil {
		return mapAdminError(c, err)
	}
	return ok(c, out)
}
