package consultation

import "errors"

var (
	ErrNotFound            = errors.New("consultation not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAccessDenied        = errors.New("not allowed to act on this consultation")
	ErrEmptyDiagnosis      = errors.New("diagnosis must not be empty")
	ErrNotAccepted         = errors.New("appointment must be accepted before completion")
	ErrAlreadyCompleted    = errors.New("appointment already has a consultation")
	ErrInvalidFee          = errors.New("fee must be greater than zero")
	ErrFeeLocked           = errors.New("fee cannot change after payment")
)
