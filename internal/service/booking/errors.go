package booking

import "errors"

var (
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrProfileIncomplete = errors.New("patient profile must have phone and address before booking")
	ErrNoSchedule        = errors.New("doctor has no published schedule")
	ErrInvalidDate       = errors.New("date must be in YYYY-MM-DD format")
	ErrNotToday          = errors.New("appointments can only be booked for today")
	ErrDoctorUnavailable = errors.New("doctor is not available on this day")
	ErrInvalidSlot       = errors.New("time is not a valid slot for this schedule")
	ErrSlotFull          = errors.New("slot has reached its booking capacity")
)
