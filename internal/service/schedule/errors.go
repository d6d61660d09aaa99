package schedule

import "errors"

var (
	ErrNotFound            = errors.New("schedule not found")
	ErrAccessDenied        = errors.New("not allowed to manage this schedule")
	ErrInvalidWorkHours    = errors.New("work_end must be after work_start")
	ErrInvalidSlotDuration = errors.New("slot_duration must be one of 15, 20, 30, 45, 60")
	ErrInvalidMaxPerSlot   = errors.New("max_per_slot must be at least 1")
	ErrNoWorkingDays       = errors.New("at least one working day must be enabled")
)
