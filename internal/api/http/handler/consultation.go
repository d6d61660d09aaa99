package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/internal/service/consultation"
)

type ConsultationHandler struct {
	svc consultation.Service
}

func NewConsultationHandler(svc consultation.Service) *ConsultationHandler {
	return &ConsultationHandler{svc: svc}
}

func mapConsultationError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, consultation.ErrNotFound),
		errors.Is(err, consultation.ErrAppointmentNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, consultation.ErrAccessDenied):
		return forbidden(c)
	case errors.Is(err, consultation.ErrEmptyDiagnosis),
		errors.Is(err, consultation.ErrInvalidFee):
		return unprocessable(c, err.Error())
	case errors.Is(err, consultation.ErrNotAccepted),
		errors.Is(err, consultation.ErrAlreadyCompleted),
		errors.Is(err, consultation.ErrFeeLocked):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /api/v1/appointments/:id/consultation
func (h *ConsultationHandler) Complete(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}
	appointmentID, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Diagnosis string   `json:"diagnosis"`
		Notes     string   `json:"notes"`
		Fee       *float64 `json:"fee"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cons, err := h.svc.Complete(c.Context(), a, appointmentID, consultation.CompleteRequest{
		Diagnosis: body.Diagnosis,
		Notes:     body.Notes,
		Fee:       body.Fee,
	})
	if err != nil {
		return mapConsultationError(c, err)
	}
	return created(c, cons)
}

// PATCH /api/v1/consultations/:id/fee
func (h *ConsultationHandler) SetFee(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}
	id, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid consultation id")
	}

	var body struct {
		Fee float64 `json:"fee"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cons, err := h.svc.SetFee(c.Context(), a, id, body.Fee)
	if err != nil {
		return mapConsultationError(c, err)
	}
	return ok(c, cons)
}

// POST /api/v1/consultations/:id/notes
func (h *ConsultationHandler) AddNote(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}
	id, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid consultation id")
	}

	var body struct {
		Note string `json:"note"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cons, err := h.svc.AddNote(c.Context(), a, id, body.Note)
	if err != nil {
		return mapConsultationError(c, err)
	}
	return ok(c, cons)
}

// GET /api/v1/consultations/:id
func (h *ConsultationHandler) GetByID(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}
	id, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid consultation id")
	}

	cons, err := h.svc.Get(c.Context(), a, id)
	if err != nil {
		return mapConsultationError(c, err)
	}
	return ok(c, cons)
}

// GET /api/v1/appointments/:id/consultation
func (h *ConsultationHandler) GetByAppointment(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}
	appointmentID, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid appointment id")
	}

	cons, err := h.svc.GetByAppointment(c.Context(), a, appointmentID)
	if err != nil {
		return mapConsultationError(c, err)
	}
	return ok(c, cons)
}

// GET /api/v1/consultations
func (h *ConsultationHandler) List(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	var (
		out []model.Consultation
		err error
	)
	switch a.Role {
	case model.RoleDoctor:
		out, err = h.svc.ListForDoctor(c.Context(), a.ID)
	default:
		out, err = h.svc.ListForPatient(c.Context(), a.ID)
	}
	if err != nil {
		return mapConsultationError(c, err)
	}
	return ok(c, out)
}
