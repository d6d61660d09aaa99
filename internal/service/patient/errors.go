package patient

import "errors"

var (
	ErrNotFound     = errors.New("patient not found")
	ErrAccessDenied = errors.New("not allowed to act on this patient")
)
