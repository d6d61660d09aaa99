package doctor

import "errors"

var (
	ErrNotFound     = errors.New("doctor not found")
	ErrAccessDenied = errors.New("not allowed to act on this doctor")
)
