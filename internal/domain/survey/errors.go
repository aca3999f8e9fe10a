package survey

import "errors"

// Sentinel kinds for survey errors.
var (
	ErrMalformedProfile = errors.New("malformed job profile")
	ErrPrematureEnd     = errors.New("job profile ended prematurely")
	ErrMissingAverage   = errors.New("question must be followed by an estimated average")
	ErrInvalidAverage   = errors.New("estimated average must be a number")

	ErrResponseCount = errors.New("unexpected number of survey responses")
	ErrInvalidMetric = errors.New("invalid metric value")
	ErrArityMismatch = errors.New("metric count does not match the survey")
	ErrOutOfScale    = errors.New("personal answer out of scale")
)
