package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/mediqhq/mediq_backend/internal/service/booking"
	"github.com/mediqhq/mediq_backend/internal/service/schedule"
)

type ScheduleHandler struct {
	schedules schedule.Service
	bookings  booking.Service
}

func NewScheduleHandler(schedules schedule.Service, bookings booking.Service) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, bookings: bookings}
}

func mapScheduleError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, schedule.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, schedule.ErrAccessDenied):
		return forbidden(c)
	case errors.Is(err, schedule.ErrInvalidWorkHours),
		errors.Is(err, schedule.ErrInvalidSlotDuration),
		errors.Is(err, schedule.ErrInvalidMaxPerSlot),
		errors.Is(err, schedule.ErrNoWorkingDays):
		return unprocessable(c, err.Error())
	default:
		return internalError(c)
	}
}

func mapBookingError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, booking.ErrNoSchedule),
		errors.Is(err, booking.ErrDoctorNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, booking.ErrInvalidDate),
		errors.Is(err, booking.ErrInvalidSlot):
		return badRequest(c, err.Error())
	case errors.Is(err, booking.ErrProfileIncomplete):
		return unprocessable(c, err.Error())
	case errors.Is(err, booking.ErrNotToday),
		errors.Is(err, booking.ErrDoctorUnavailable),
		errors.Is(err, booking.ErrSlotFull):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /api/v1/doctors/:id/schedule
func (h *ScheduleHandler) Get(c fiber.Ctx) error {
	doctorID, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid doctor id")
	}

	sched, err := h.schedules.Get(c.Context(), doctorID)
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, sched)
}

// PUT /api/v1/doctors/:id/schedule
func (h *ScheduleHandler) Upsert(c fiber.Ctx) error {
	a := actor(c)
	if a == nil {
		return unauthorized(c)
	}
	doctorID, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid doctor id")
	}

	var body struct {
		WorkStart    string `json:"work_start"`
		WorkEnd      string `json:"work_end"`
		Monday       bool   `json:"monday"`
		Tuesday      bool   `json:"tuesday"`
		Wednesday    bool   `json:"wednesday"`
		Thursday     bool   `json:"thursday"`
		Friday       bool   `json:"friday"`
		Saturday     bool   `json:"saturday"`
		Sunday       bool   `json:"sunday"`
		SlotDuration int    `json:"slot_duration"`
		MaxPerSlot   int    `json:"max_per_slot"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	sched, err := h.schedules.Upsert(c.Context(), a, doctorID, schedule.UpsertRequest{
		WorkStart:    body.WorkStart,
		WorkEnd:      body.WorkEnd,
		Monday:       body.Monday,
		Tuesday:      body.Tuesday,
		Wednesday:    body.Wednesday,
		Thursday:     body.Thursday,
		Friday:       body.Friday,
		Saturday:     body.Saturday,
		Sunday:       body.Sunday,
		SlotDuration: body.SlotDuration,
		MaxPerSlot:   body.MaxPerSlot,
	})
	if err != nil {
		return mapScheduleError(c, err)
	}
	return ok(c, sched)
}

// GET /api/v1/doctors/:id/availability?date=2006-01-02
func (h *ScheduleHandler) Availability(c fiber.Ctx) error {
	doctorID, okID := pathID(c, "id")
	if !okID {
		return badRequest(c, "invalid doctor id")
	}
	date := c.Query("date")
	if date == "" {
		return badRequest(c, "date is required")
	}

	slots, err := h.bookings.Availability(c.Context(), doctorID, date)
	if err != nil {
		return mapBookingError(c, err)
	}
	return ok(c, slots)
}
