package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/service/doctor"
	"github.com/mediqhq/mediq_backend/pkg/storage"
)

type DoctorHandler struct {
	svc doctor.Service
}

func NewDoctorHandler(svc doctor.Service) *DoctorHandler {
	return &DoctorHandler{svc: svc}
}

func mapDoctorError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, doctor.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, doctor.ErrAccessDenied):
		return forbidden(c)
	case errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, storage.ErrTooLarge):
		return unprocessable(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /api/v1/doctors?department_id=&specialty_id=
func (h *DoctorHandler) List(c fiber.Ctx) error {
	var f doctor.ListFilter
	if v := c.Query("department_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid department_id")
		}
		f.DepartmentID = uint(id)
	}
	if v := c.Query("specialty_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid specialty_id")
		}
		f.SpecialtyID = uint(id)
	}

	doctors, err := h.svc.List(c.Context(), f)
	if err != nil {
		return mapDoctorError(c, err)
	}
	return ok(c, doctors)
}

// GET /api/v1/doctors/:id
func (h *DoctorHandler) GetByID(c fiber.Ctx) error {
	id, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid doctor id")
	}

	d, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapDoctorError(c, err)
	}
	return ok(c, d)
}

// PATCH /api/v1/doctors/me
func (h *DoctorHandler) UpdateMe(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		Gender    string `json:"gender"`
		Bio       string `json:"bio"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	d, err := h.svc.UpdateProfile(c.Context(), a.ID, doctor.UpdateProfileRequest{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		Gender:    body.Gender,
		Bio:       body.Bio,
	})
	if err != nil {
		return mapDoctorError(c, err)
	}
	return ok(c, d)
}

// PUT /api/v1/doctors/me/picture
func (h *DoctorHandler) UploadPicture(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	data, filename, err := formFile(c, "picture")
	if err != nil {
		return badRequest(c, "picture file is required")
	}

	d, err := h.svc.UpdatePicture(c.Context(), a.ID, filename, data)
	if err != nil {
		return mapDoctorError(c, err)
	}
	return ok(c, d)
}

// GET /api/v1/doctors/me/statistics
func (h *DoctorHandler) Statistics(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	stats, err := h.svc.Statistics(c.Context(), a.ID)
	if err != nil {
		return mapDoctorError(c, err)
	}
	return ok(c, stats)
}

// GET /api/v1/doctors/me/patients
func (h *DoctorHandler) Patients(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	patients, err := h.svc.Patients(c.Context(), a.ID)
	if err != nil {
		return mapDoctorError(c, err)
	}
	return ok(c, patients)
}
