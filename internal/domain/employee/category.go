// Package employee aggregates an employee's per-job survey histories.
package employee

import (
	"fmt"
	"strings"

	"github.com/okian/ewi/internal/domain/record"
)

// Category selects one of the two parallel histories kept per job.
type Category int

const (
	// Technical holds answers to the job-specific questions.
	Technical Category = iota
	// Personal holds answers to the fixed personal questions.
	Personal
)

// Categories lists every category in serialization order.
var Categories = []Category{Technical, Personal}

// Token returns the single-character code used in exported files.
func (c Category) Token() byte {
	if c == Personal {
		return 'P'
	}
	return 'T'
}

// String returns the lower-case category name.
func (c Category) String() string {
	switch c {
	case Technical:
		return "technical"
	case Personal:
		return "personal"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory accepts a token (T, P) or a name (technical, personal), case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "technical":
		return Technical, nil
	case "p", "personal":
		return Personal, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

// WIRecord binds the technical and personal histories for one job.
type WIRecord struct {
	Technical record.Record
	Personal  record.Record
}

// Record returns the history selected by c.
func (w *WIRecord) Record(c Category) *record.Record {
	if c == Personal {
		return &w.Personal
	}
	return &w.Technical
}

// Clone returns a deep copy.
func (w *WIRecord) Clone() *WIRecord {
	return &WIRecord{
		Technical: *w.Technical.Clone(),
		Personal:  *w.Personal.Clone(),
	}
}

// Equal compares both histories.
func (w *WIRecord) Equal(o *WIRecord) bool {
	return w.Technical.Equal(&o.Technical) && w.Personal.Equal(&o.Personal)
}
