package appointment

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/internal/service/booking"
	"github.com/mediqhq/mediq_backend/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RescheduleRequest struct {
	Date     string // 2006-01-02
	TimeSlot string // 15:04
	Reason   string // optional new reason; empty keeps the old one
}

type ListFilter struct {
	Status model.AppointmentStatus // empty means all
	Date   string                  // empty means all
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

// Service drives the appointment lifecycle. Every mutation takes the acting
// identity and enforces both role authority and row ownership:
//
//	pending   -> accepted | declined   (the appointment's doctor)
//	pending   -> cancelled             (the appointment's patient, or admin)
//	accepted  -> cancelled             (the appointment's patient, or admin)
//	accepted  -> completed             (via the consultation service)
//
// Completed, declined, and cancelled are terminal here.
type Service interface {
	Get(ctx context.Context, actor *reqctx.Actor, id uint) (*model.Appointment, error)
	ListForPatient(ctx context.Context, patientID uint, f ListFilter) ([]model.Appointment, error)
	ListForDoctor(ctx context.Context, doctorID uint, f ListFilter) ([]model.Appointment, error)
	ListAll(ctx context.Context, f ListFilter) ([]model.Appointment, error)

	Accept(ctx context.Context, actor *reqctx.Actor, id uint) (*model.Appointment, error)
	Decline(ctx context.Context, actor *reqctx.Actor, id uint) (*model.Appointment, error)
	Cancel(ctx context.Context, actor *reqctx.Actor, id uint) (*model.Appointment, error)

	// Reschedule moves a pending appointment to a new slot, re-running the
	// full availability check. The appointment stays pending.
	Reschedule(ctx context.Context, actor *reqctx.Actor, id uint, req RescheduleRequest) (*model.Appointment, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	db       *gorm.DB
	bookings booking.Service
}

func New(db *gorm.DB, bookings booking.Service) Service {
	return &appointmentService{db: db, bookings: bookings}
}

func (s *appointmentService) Get(ctx context.Context, actor *reqctx.Actor, id uint) (*model.Appointment, error) {
	appt, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := canSee(actor, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *appointmentService) ListForPatient(ctx context.Context, patientID uint, f ListFilter) ([]model.Appointment, error) {
	return s.list(ctx, f, "patient_id = ?", patientID)
}

func (s *appointmentService) ListForDoctor(ctx context.Context, doctorID uint, f ListFilter) ([]model.Appointment, error) {
	return s.list(ctx, f, "doctor_id = ?", doctorID)
}

func (s *appointmentService) ListAll(ctx context.Context, f ListFilter) ([]model.Appointment, error) {
	return s.list(ctx, f, "")
}

func (s *appointmentService) Accept(ctx context.Context, actor *reqctx.Actor, id uint) (*model.Appointment, error) {
	return s.transition(ctx, actor, id,
		[]model.AppointmentStatus{model.AppointmentPending},
		model.AppointmentAccepted,
		doctorOwns)
}

func (s *appointmentService) Decline(ctx context.Context, actor *reqctx.Actor, id uint) (*model.Appointment, error) {
	return s.transition(ctx, actor, id,
		[]model.AppointmentStatus{model.AppointmentPending},
		model.AppointmentDeclined,
		doctorOwns)
}

func (s *appointmentService) Cancel(ctx context.Context, actor *reqctx.Actor, id uint) (*model.Appointment, error) {
	return s.transition(ctx, actor, id,
		[]model.AppointmentStatus{model.AppointmentPending, model.AppointmentAccepted},
		model.AppointmentCancelled,
		patientOwnsOrAdmin)
}

func (s *appointmentService) Reschedule(ctx context.Context, actor *reqctx.Actor, id uint, req RescheduleRequest) (*model.Appointment, error) {
	appt, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := patientOwnsOrAdmin(actor, appt); err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentPending {
		return nil, ErrInvalidTransition
	}

	// Moving within the same slot is a no-op for availability; any other
	// target must pass the full check.
	if req.Date != appt.Date || req.TimeSlot != appt.TimeSlot {
		if err := s.bookings.CanBook(ctx, appt.DoctorID, req.Date, req.TimeSlot); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{
		"date":      req.Date,
		"time_slot": req.TimeSlot,
	}
	if req.Reason != "" {
		updates["reason"] = req.Reason
	}

	// Status in the WHERE clause: a transition that lands between the read
	// above and this write makes the reschedule lose cleanly.
	res := s.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("id = ? AND status = ?", id, model.AppointmentPending).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("reschedule appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	appt.Date = req.Date
	appt.TimeSlot = req.TimeSlot
	if req.Reason != "" {
		appt.Reason = req.Reason
	}
	return appt, nil
}

// transition applies a guarded status update. The WHERE clause re-checks the
// source status so a concurrent transition loses cleanly instead of
// overwriting.
func (s *appointmentService) transition(
	ctx context.Context,
	actor *reqctx.Actor,
	id uint,
	from []model.AppointmentStatus,
	to model.AppointmentStatus,
	authorize func(*reqctx.Actor, *model.Appointment) error,
) (*model.Appointment, error) {
	appt, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, appt); err != nil {
		return nil, err
	}

	allowed := false
	for _, st := range from {
		if appt.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidTransition
	}

	res := s.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return nil, fmt.Errorf("update appointment status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Lost a race with another transition.
		return nil, ErrInvalidTransition
	}

	appt.Status = to
	return appt, nil
}

func (s *appointmentService) load(ctx context.Context, tx *gorm.DB, id uint) (*model.Appointment, error) {
	var appt model.Appointment
	err := tx.WithContext(ctx).First(&appt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &appt, nil
}

func (s *appointmentService) list(ctx context.Context, f ListFilter, cond string, args ...any) ([]model.Appointment, error) {
	q := s.db.WithContext(ctx).Model(&model.Appointment{})
	if cond != "" {
		q = q.Where(cond, args...)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Date != "" {
		q = q.Where("date = ?", f.Date)
	}

	var appts []model.Appointment
	if err := q.Order("date DESC, time_slot DESC, id DESC").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// ---------------------------------------------------------------------------
// Ownership rules
// ---------------------------------------------------------------------------

func doctorOwns(actor *reqctx.Actor, appt *model.Appointment) error {
	if actor.Role == model.RoleDoctor && actor.ID == appt.DoctorID {
		return nil
	}
	return ErrAccessDenied
}

func patientOwnsOrAdmin(actor *reqctx.Actor, appt *model.Appointment) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}
	if actor.Role == model.RolePatient && actor.ID == appt.PatientID {
		return nil
	}
	return ErrAccessDenied
}

func canSee(actor *reqctx.Actor, appt *model.Appointment) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleDoctor:
		if actor.ID == appt.DoctorID {
			return nil
		}
	case model.RolePatient:
		if actor.ID == appt.PatientID {
			return nil
		}
	}
	return ErrAccessDenied
}
