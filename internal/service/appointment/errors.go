package appointment

import "errors"

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrAccessDenied      = errors.New("not allowed to act on this appointment")
	ErrInvalidTransition = errors.New("appointment status does not allow this transition")
)
