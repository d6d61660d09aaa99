package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/internal/service/schedule"
	"github.com/mediqhq/mediq_backend/pkg/reqctx"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookRequest struct {
	DoctorID uint
	Date     string // 2006-01-02
	TimeSlot string // 15:04
	Reason   string
}

// SlotAvailability describes one bookable slot on a given day.
type SlotAvailability struct {
	Time      string `json:"time"`
	Booked    int64  `json:"booked"`
	Capacity  int    `json:"capacity"`
	Available bool   `json:"available"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// CanBook checks whether a slot is bookable without reserving it.
	// Checks run in a fixed order so callers get the most fundamental
	// failure first: doctor existence, schedule existence, date validity,
	// same-day rule, weekday coverage, slot validity, then capacity.
	CanBook(ctx context.Context, doctorID uint, date, timeSlot string) error

	// Book reserves a slot for the acting patient, who must have a
	// complete profile (phone and address). The capacity check and the
	// insert run in one transaction against a locked schedule row, so
	// concurrent bookings cannot oversubscribe a slot.
	Book(ctx context.Context, actor *reqctx.Actor, req BookRequest) (*model.Appointment, error)

	// Availability lists every slot for a doctor on a date with its
	// remaining capacity.
	Availability(ctx context.Context, doctorID uint, date string) ([]SlotAvailability, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type bookingService struct {
	db        *gorm.DB
	schedules schedule.Service

	// now is injectable so the same-day rule is testable.
	now func() time.Time
}

func New(db *gorm.DB, schedules schedule.Service) Service {
	return &bookingService{db: db, schedules: schedules, now: time.Now}
}

// NewWithNow builds a Service with a fixed clock. Tests only.
func NewWithNow(db *gorm.DB, schedules schedule.Service, now func() time.Time) Service {
	return &bookingService{db: db, schedules: schedules, now: now}
}

func (s *bookingService) CanBook(ctx context.Context, doctorID uint, date, timeSlot string) error {
	if err := s.doctorExists(ctx, doctorID); err != nil {
		return err
	}

	sched, err := s.schedules.Get(ctx, doctorID)
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			return ErrNoSchedule
		}
		return err
	}

	if err := s.checkDate(sched, date); err != nil {
		return err
	}

	if err := s.checkSlot(sched, timeSlot); err != nil {
		return err
	}

	booked, err := s.countBooked(ctx, s.db, doctorID, date, timeSlot)
	if err != nil {
		return err
	}
	if booked >= int64(sched.MaxPerSlot) {
		return ErrSlotFull
	}
	return nil
}

func (s *bookingService) Book(ctx context.Context, actor *reqctx.Actor, req BookRequest) (*model.Appointment, error) {
	if actor.Role == model.RolePatient {
		var patient model.Patient
		if err := s.db.WithContext(ctx).First(&patient, actor.ID).Error; err != nil {
			return nil, fmt.Errorf("get patient: %w", err)
		}
		if !patient.ProfileComplete() {
			return nil, ErrProfileIncomplete
		}
	}

	if err := s.doctorExists(ctx, req.DoctorID); err != nil {
		return nil, err
	}

	var appt model.Appointment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the schedule row for the duration of the booking so two
		// patients cannot both pass the capacity check for the last seat.
		var sched model.DoctorSchedule
		err := lockForUpdate(tx).
			Where("doctor_id = ?", req.DoctorID).
			First(&sched).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoSchedule
			}
			return fmt.Errorf("lock schedule: %w", err)
		}

		if err := s.checkDate(&sched, req.Date); err != nil {
			return err
		}
		if err := s.checkSlot(&sched, req.TimeSlot); err != nil {
			return err
		}

		booked, err := s.countBooked(ctx, tx, req.DoctorID, req.Date, req.TimeSlot)
		if err != nil {
			return err
		}
		if booked >= int64(sched.MaxPerSlot) {
			return ErrSlotFull
		}

		appt = model.Appointment{
			PatientID: actor.ID,
			DoctorID:  req.DoctorID,
			Date:      req.Date,
			TimeSlot:  req.TimeSlot,
			Status:    model.AppointmentPending,
			Reason:    req.Reason,
		}
		if err := tx.Create(&appt).Error; err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (s *bookingService) Availability(ctx context.Context, doctorID uint, date string) ([]SlotAvailability, error) {
	if err := s.doctorExists(ctx, doctorID); err != nil {
		return nil, err
	}

	sched, err := s.schedules.Get(ctx, doctorID)
	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			return nil, ErrNoSchedule
		}
		return nil, err
	}

	if err := s.checkDate(sched, date); err != nil {
		return nil, err
	}

	slots := s.schedules.SlotTimes(sched)
	out := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		booked, err := s.countBooked(ctx, s.db, doctorID, date, slot)
		if err != nil {
			return nil, err
		}
		out = append(out, SlotAvailability{
			Time:      slot,
			Booked:    booked,
			Capacity:  sched.MaxPerSlot,
			Available: booked < int64(sched.MaxPerSlot),
		})
	}
	return out, nil
}

// checkDate validates the date format, the same-day rule, and weekday
// coverage. The same-day restriction lives here and nowhere else; relaxing
// it to a booking window is a one-line change.
func (s *bookingService) checkDate(sched *model.DoctorSchedule, date string) error {
	parsed, err := time.Parse(schedule.DateLayout, date)
	if err != nil {
		return ErrInvalidDate
	}

	today := s.now().Format(schedule.DateLayout)
	if date != today {
		return ErrNotToday
	}

	if !sched.DayEnabled(parsed.Weekday()) {
		return ErrDoctorUnavailable
	}
	return nil
}

func (s *bookingService) checkSlot(sched *model.DoctorSchedule, timeSlot string) error {
	for _, slot := range s.schedules.SlotTimes(sched) {
		if slot == timeSlot {
			return nil
		}
	}
	return ErrInvalidSlot
}

// lockForUpdate adds a row-level lock on dialects that support SELECT FOR
// UPDATE. SQLite has a single writer per database, so the enclosing
// transaction already serializes bookings there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *bookingService) doctorExists(ctx context.Context, doctorID uint) error {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Doctor{}).
		Where("id = ?", doctorID).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("check doctor: %w", err)
	}
	if n == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

// countBooked counts live appointments in a slot. Cancelled appointments
// release their seat; declined ones keep it until the patient rebooks.
func (s *bookingService) countBooked(ctx context.Context, tx *gorm.DB, doctorID uint, date, timeSlot string) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time_slot = ? AND status <> ?",
			doctorID, date, timeSlot, model.AppointmentCancelled).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count slot bookings: %w", err)
	}
	return count, nil
}
