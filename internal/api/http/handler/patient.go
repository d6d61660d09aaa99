package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/service/patient"
	"github.com/mediqhq/mediq_backend/pkg/storage"
)

type PatientHandler struct {
	svc patient.Service
}

func NewPatientHandler(svc patient.Service) *PatientHandler {
	return &PatientHandler{svc: svc}
}

func mapPatientError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, patient.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, patient.ErrAccessDenied):
		return forbidden(c)
	case errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, storage.ErrTooLarge):
		return unprocessable(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /api/v1/patients/me
func (h *PatientHandler) Me(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	p, err := h.svc.Get(c.Context(), a.ID)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p)
}

// PATCH /api/v1/patients/me
func (h *PatientHandler) UpdateMe(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	var body struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Phone       string `json:"phone"`
		Gender      string `json:"gender"`
		DateOfBirth string `json:"date_of_birth"`
		Address     string `json:"address"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.UpdateProfile(c.Context(), a.ID, patient.UpdateProfileRequest{
		FirstName:   body.FirstName,
		LastName:    body.LastName,
		Phone:       body.Phone,
		Gender:      body.Gender,
		DateOfBirth: body.DateOfBirth,
		Address:     body.Address,
	})
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p)
}

// PUT /api/v1/patients/me/picture
func (h *PatientHandler) UploadPicture(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	data, filename, err := formFile(c, "picture")
	if err != nil {
		return badRequest(c, "picture file is required")
	}

	p, err := h.svc.UpdatePicture(c.Context(), a.ID, filename, data)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, p)
}

// GET /api/v1/patients/me/dashboard
func (h *PatientHandler) Dashboard(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	d, err := h.svc.Dashboard(c.Context(), a.ID)
	if err != nil {
		return mapPatientError(c, err)
	}
	return ok(c, d)
}

// formFile reads a multipart upload into memory.
func formFile(c fiber.Ctx, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Filename, nil
}
