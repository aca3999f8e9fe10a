package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound   = errors.New("employee history not found")
	ErrInvalidID  = errors.New("employee id is not a valid file name")
	ErrIDMismatch = errors.New("history file belongs to another employee")
	ErrBadPattern = errors.New("invalid list pattern")
)
