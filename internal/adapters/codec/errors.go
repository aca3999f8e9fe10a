package codec

import (
	"errors"
	"fmt"
)

// Sentinel kinds for decode failures. Every decode error wraps one of these,
// or an error from the record/employee packages, inside a *LineError.
var (
	ErrMalformedHeader  = errors.New("malformed header")
	ErrMalformedLine    = errors.New("malformed entry line")
	ErrUnknownCategory  = errors.New("unknown category token")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMetric    = errors.New("invalid metric")
	ErrUnterminatedNote = errors.New("unterminated note")
)

// ErrUnencodable is returned for records the line format cannot carry.
var ErrUnencodable = errors.New("not encodable")

// LineError reports the 1-based line on which decoding failed.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *LineError) Unwrap() error { return e.Err }

func lineErr(line int, err error) error { return &LineError{Line: line, Err: err} }
