package employee

import "errors"

// Sentinel kinds for employee record errors.
var (
	ErrJobExists       = errors.New("job already present")
	ErrJobNotFound     = errors.New("job not found")
	ErrUnknownCategory = errors.New("unknown record category")
)
