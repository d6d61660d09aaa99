package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/internal/service/appointment"
	"github.com/mediqhq/mediq_backend/internal/service/booking"
	"github.com/mediqhq/mediq_backend/pkg/reqctx"
)

type AppointmentHandler struct {
	bookings booking.Service
	svc      appointment.Service
}

func NewAppointmentHandler(bookings booking.Service, svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{bookings: bookings, svc: svc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, appointment.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrAccessDenied):
		return forbidden(c)
	case errors.Is(err, appointment.ErrInvalidTransition):
		return conflict(c, err.Error())
	case errors.Is(err, booking.ErrNoSchedule),
		errors.Is(err, booking.ErrInvalidDate),
		errors.Is(err, booking.ErrNotToday),
		errors.Is(err, booking.ErrDoctorUnavailable),
		errors.Is(err, booking.ErrInvalidSlot),
		errors.Is(err, booking.ErrSlotFull),
		errors.Is(err, booking.ErrProfileIncomplete):
		return mapBookingError(c, err)
	default:
		return internalError(c)
	}
}

// POST /api/v1/appointments
func (h *AppointmentHandler) Book(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	var body struct {
		DoctorID uint   `json:"doctor_id"`
		Date     string `json:"date"`
		TimeSlot string `json:"time_slot"`
		Reason   string `json:"reason"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.DoctorID == 0 {
		return badRequest(c, "doctor_id is required")
	}

	appt, err := h.bookings.Book(c.Context(), a, booking.BookRequest{
		DoctorID: body.DoctorID,
		Date:     body.Date,
		TimeSlot: body.TimeSlot,
		Reason:   body.Reason,
	})
	if err != nil {
		return mapBookingError(c, err)
	}
	return created(c, appt)
}

// GET /api/v1/appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}

	filter := appointment.ListFilter{
		Status: model.AppointmentStatus(c.Query("status")),
		Date:   c.Query("date"),
	}

	var (
		appts []model.Appointment
		err   error
	)
	switch a.Role {
	case model.RolePatient:
		appts, err = h.svc.ListForPatient(c.Context(), a.ID, filter)
	case model.RoleDoctor:
		appts, err = h.svc.ListForDoctor(c.Context(), a.ID, filter)
	default:
		appts, err = h.svc.ListAll(c.Context(), filter)
	}
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appts)
}

// GET /api/v1/appointments/:id
func (h *AppointmentHandler) GetByID(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}
	id, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := h.svc.Get(c.Context(), a, id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appt)
}

// PATCH /api/v1/appointments/:id/accept
func (h *AppointmentHandler) Accept(c fiber.Ctx) error {
	return h.transition(c, h.svc.Accept)
}

// PATCH /api/v1/appointments/:id/decline
func (h *AppointmentHandler) Decline(c fiber.Ctx) error {
	return h.transition(c, h.svc.Decline)
}

// PATCH /api/v1/appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	return h.transition(c, h.svc.Cancel)
}

// PATCH /api/v1/appointments/:id/reschedule
func (h *AppointmentHandler) Reschedule(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}
	id, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Date     string `json:"date"`
		TimeSlot string `json:"time_slot"`
		Reason   string `json:"reason"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	appt, err := h.svc.Reschedule(c.Context(), a, id, appointment.RescheduleRequest{
		Date:     body.Date,
		TimeSlot: body.TimeSlot,
		Reason:   body.Reason,
	})
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appt)
}

func (h *AppointmentHandler) transition(
	c fiber.Ctx,
	fn func(ctx context.Context, actor *reqctx.Actor, id uint) (*model.Appointment, error),
) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}
	id, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := fn(c.Context(), a, id)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return ok(c, appt)
}
