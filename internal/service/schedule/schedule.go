package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mediqhq/mediq_backend/internal/model"
	"github.com/mediqhq/mediq_backend/pkg/reqctx"
)

// TimeLayout is the wire and storage format for slot times.
const TimeLayout = "15:04"

// DateLayout is the wire and storage format for appointment dates.
const DateLayout = "2006-01-02"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type UpsertRequest struct {
	WorkStart string // 15:04
	WorkEnd   string

	Monday    bool
	Tuesday   bool
	Wednesday bool
	Thursday  bool
	Friday    bool
	Saturday  bool
	Sunday    bool

	SlotDuration int // minutes; 0 means keep default
	MaxPerSlot   int // 0 means keep default
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Get returns a doctor's schedule, or ErrNotFound.
	Get(ctx context.Context, doctorID uint) (*model.DoctorSchedule, error)

	// Upsert creates or replaces the acting doctor's schedule. Admins may
	// manage any doctor's schedule.
	Upsert(ctx context.Context, actor *reqctx.Actor, doctorID uint, req UpsertRequest) (*model.DoctorSchedule, error)

	// SlotTimes enumerates every bookable slot start for a schedule, from
	// work_start inclusive to work_end exclusive.
	SlotTimes(s *model.DoctorSchedule) []string
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type scheduleService struct {
	db *gorm.DB
}

func New(db *gorm.DB) Service {
	return &scheduleService{db: db}
}

func (s *scheduleService) Get(ctx context.Context, doctorID uint) (*model.DoctorSchedule, error) {
	var sched model.DoctorSchedule
	err := s.db.WithContext(ctx).Where("doctor_id = ?", doctorID).First(&sched).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return &sched, nil
}

func (s *scheduleService) Upsert(ctx context.Context, actor *reqctx.Actor, doctorID uint, req UpsertRequest) (*model.DoctorSchedule, error) {
	if actor.Role == model.RoleDoctor && actor.ID != doctorID {
		return nil, ErrAccessDenied
	}

	if err := validate(req); err != nil {
		return nil, err
	}

	duration := req.SlotDuration
	if duration == 0 {
		duration = model.DefaultSlotDuration
	}
	maxPerSlot := req.MaxPerSlot
	if maxPerSlot == 0 {
		maxPerSlot = model.DefaultMaxPerSlot
	}

	var sched model.DoctorSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("doctor_id = ?", doctorID).First(&sched).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load schedule: %w", err)
		}

		sched.DoctorID = doctorID
		sched.WorkStart = req.WorkStart
		sched.WorkEnd = req.WorkEnd
		sched.Monday = req.Monday
		sched.Tuesday = req.Tuesday
		sched.Wednesday = req.Wednesday
		sched.Thursday = req.Thursday
		sched.Friday = req.Friday
		sched.Saturday = req.Saturday
		sched.Sunday = req.Sunday
		sched.SlotDuration = duration
		sched.MaxPerSlot = maxPerSlot

		if err := tx.Save(&sched).Error; err != nil {
			return fmt.Errorf("save schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

func (s *scheduleService) SlotTimes(sched *model.DoctorSchedule) []string {
	start, err := time.Parse(TimeLayout, sched.WorkStart)
	if err != nil {
		return nil
	}
	end, err := time.Parse(TimeLayout, sched.WorkEnd)
	if err != nil {
		return nil
	}

	duration := time.Duration(sched.SlotDuration) * time.Minute
	if duration <= 0 {
		duration = model.DefaultSlotDuration * time.Minute
	}

	var slots []string
	for t := start; t.Before(end); t = t.Add(duration) {
		slots = append(slots, t.Format(TimeLayout))
	}
	return slots
}

func validate(req UpsertRequest) error {
	start, err := time.Parse(TimeLayout, req.WorkStart)
	if err != nil {
		return ErrInvalidWorkHours
	}
	end, err := time.Parse(TimeLayout, req.WorkEnd)
	if err != nil {
		return ErrInvalidWorkHours
	}
	if !end.After(start) {
		return ErrInvalidWorkHours
	}

	if req.SlotDuration != 0 {
		valid := false
		for _, d := range model.AllowedSlotDurations {
			if req.SlotDuration == d {
				valid = true
				break
			}
		}
		if !valid {
			return ErrInvalidSlotDuration
		}
	}

	if req.MaxPerSlot < 0 {
		return ErrInvalidMaxPerSlot
	}

	if !req.Monday && !req.Tuesday && !req.Wednesday && !req.Thursday &&
		!req.Friday && !req.Saturday && !req.Sunday {
		return ErrNoWorkingDays
	}

	return nil
}
