package admin

import "errors"

var (
	ErrNotFound           = errors.New("record not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrNameAlreadyExists  = errors.New("name already exists")
	ErrInUse              = errors.New("record is referenced and cannot be deleted")
)
