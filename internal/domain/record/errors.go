package record

import "errors"

// Sentinel kinds for record validation failures.
var (
	// ErrDisorderedDate means the entry is not strictly later than the last one.
	ErrDisorderedDate = errors.New("entry date is not after the last entry")
	// ErrInconsistentMetrics means the entry's metric count differs from the record's.
	ErrInconsistentMetrics = errors.New("entry metric count differs from record")
)
