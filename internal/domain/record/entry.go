// Package record holds the time-ordered survey history for one job category.
package record

import (
	"fmt"
	"slices"
	"strings"

	"github.com/okian/ewi/internal/domain/model"
)

// Entry is one dated survey observation. It is immutable once built.
type Entry struct {
	date    model.Date
	note    string
	metrics []float64
}

// NewEntry stores the given values as-is. Ordering and arity are checked by Record.
func NewEntry(date model.Date, note string, metrics []float64) Entry {
	return Entry{date: date, note: note, metrics: metrics}
}

// Date returns the day of the observation.
func (e Entry) Date() model.Date { return e.date }

// Note returns the free-text note. It may contain line breaks.
func (e Entry) Note() string { return e.note }

// Metrics returns the metric vector. The slice is shared; do not modify it.
func (e Entry) Metrics() []float64 { return e.metrics }

// Dim returns the number of metrics.
func (e Entry) Dim() int { return len(e.metrics) }

// Equal compares date, note and metrics.
func (e Entry) Equal(o Entry) bool {
	return e.date == o.date && e.note == o.note && slices.Equal(e.metrics, o.metrics)
}

// Compare orders entries by date only.
func (e Entry) Compare(o Entry) int { return e.date.Compare(o.date) }

// String renders the entry for debugging.
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "{date: %s, metrics: %v, note: %q}", e.date, e.metrics, e.note)
	return b.String()
}
