package record

import (
	"fmt"
	"slices"
	"sort"

	"github.com/okian/ewi/internal/domain/model"
)

// DateRange is an inclusive window of days. A nil bound is open in that direction.
type DateRange struct {
	Min *model.Date
	Max *model.Date
}

// All is the fully open window.
func All() DateRange { return DateRange{} }

// Between returns the closed window [from, to].
func Between(from, to model.Date) DateRange { return DateRange{Min: &from, Max: &to} }

// Since returns the window [from, +inf).
func Since(from model.Date) DateRange { return DateRange{Min: &from} }

// Until returns the window (-inf, to].
func Until(to model.Date) DateRange { return DateRange{Max: &to} }

// On returns the single-day window [d, d].
func On(d model.Date) DateRange { return Between(d, d) }

// String renders the window with "None" for open ends.
func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s]", boundString(r.Min), boundString(r.Max))
}

func boundString(d *model.Date) string {
	if d == nil {
		return "None"
	}
	return d.String()
}

// IndexRange is an inclusive span of positions into a Record.
type IndexRange struct {
	Min int
	Max int
}

// Len returns the number of positions in the span.
func (r IndexRange) Len() int { return r.Max - r.Min + 1 }

// String renders the span.
func (r IndexRange) String() string { return fmt.Sprintf("[%d, %d]", r.Min, r.Max) }

// Record is a sequence of entries kept in strictly ascending, unique date order
// with a uniform metric count. The zero value is an empty record ready for use.
type Record struct {
	entries []Entry
}

// New builds a record from entries that must already be strictly ascending by
// date and share one metric count. The slice is owned by the record afterwards.
func New(entries []Entry) (*Record, error) {
	for i := 1; i < len(entries); i++ {
		if !entries[i].date.After(entries[i-1].date) {
			return nil, fmt.Errorf("entry %d (%s): %w", i, entries[i].date, ErrDisorderedDate)
		}
		if entries[i].Dim() != entries[i-1].Dim() {
			return nil, fmt.Errorf("entry %d (%s): %w", i, entries[i].date, ErrInconsistentMetrics)
		}
	}
	return &Record{entries: entries}, nil
}

// Add appends e when the record is empty or e is strictly later than the last
// entry and has the record's metric count. The record is unchanged on failure.
func (r *Record) Add(e Entry) error {
	if n := len(r.entries); n > 0 {
		last := r.entries[n-1]
		if !e.date.After(last.date) {
			return fmt.Errorf("add %s after %s: %w", e.date, last.date, ErrDisorderedDate)
		}
		if e.Dim() != last.Dim() {
			return fmt.Errorf("add %s with %d metrics, want %d: %w", e.date, e.Dim(), last.Dim(), ErrInconsistentMetrics)
		}
	}
	r.entries = append(r.entries, e)
	return nil
}

// Update replaces the entry sharing e's date, or inserts e and re-sorts by date.
// The metric count is not checked on this path.
func (r *Record) Update(e Entry) {
	if i, ok := r.Find(e.date); ok {
		r.entries[i] = e
		return
	}
	r.entries = append(r.entries, e)
	slices.SortStableFunc(r.entries, Entry.Compare)
}

// Remove deletes the entry on date d if present.
func (r *Record) Remove(d model.Date) {
	if i, ok := r.Find(d); ok {
		r.entries = slices.Delete(r.entries, i, i+1)
	}
}

// Find returns the index of the entry on exactly date d.
func (r *Record) Find(d model.Date) (int, bool) {
	for i := range r.entries {
		if r.entries[i].date == d {
			return i, true
		}
	}
	return 0, false
}

// FindRange returns the inclusive index span of entries whose dates fall in rng.
// It reports false when the record is empty or nothing falls in the window.
func (r *Record) FindRange(rng DateRange) (IndexRange, bool) {
	n := len(r.entries)
	if n == 0 {
		return IndexRange{}, false
	}
	if rng.Min != nil && rng.Max != nil && *rng.Min == *rng.Max {
		i, ok := r.Find(*rng.Min)
		if !ok {
			return IndexRange{}, false
		}
		return IndexRange{Min: i, Max: i}, true
	}

	lo := 0
	if rng.Min != nil {
		// first index whose date is >= min
		lo = sort.Search(n, func(i int) bool { return !r.entries[i].date.Before(*rng.Min) })
		if lo == n {
			return IndexRange{}, false
		}
	}
	hi := n - 1
	if rng.Max != nil {
		// last index whose date is <= max
		hi = sort.Search(n, func(i int) bool { return r.entries[i].date.After(*rng.Max) }) - 1
		if hi < 0 {
			return IndexRange{}, false
		}
	}
	if lo > hi {
		return IndexRange{}, false
	}
	return IndexRange{Min: lo, Max: hi}, true
}

// Get returns a copy of the entry on date d.
func (r *Record) Get(d model.Date) (Entry, bool) {
	i, ok := r.Find(d)
	if !ok {
		return Entry{}, false
	}
	e := r.entries[i]
	e.metrics = slices.Clone(e.metrics)
	return e, true
}

// At returns the entry at position i. It panics when i is out of range; use
// indices obtained from Find or FindRange.
func (r *Record) At(i int) Entry { return r.entries[i] }

// Len returns the number of entries.
func (r *Record) Len() int { return len(r.entries) }

// IsEmpty reports whether the record has no entries.
func (r *Record) IsEmpty() bool { return len(r.entries) == 0 }

// MetricDim returns the shared metric count, or 0 while the record is empty.
func (r *Record) MetricDim() int {
	if len(r.entries) == 0 {
		return 0
	}
	return r.entries[0].Dim()
}

// Entries returns the entries in date order. The slice aliases the record's storage.
func (r *Record) Entries() []Entry { return r.entries }

// Window returns the entries whose dates fall in rng, aliasing the record's storage.
func (r *Record) Window(rng DateRange) []Entry {
	span, ok := r.FindRange(rng)
	if !ok {
		return nil
	}
	return r.entries[span.Min : span.Max+1]
}

// Metrics returns views of the metric vectors for entries in rng.
func (r *Record) Metrics(rng DateRange) [][]float64 {
	window := r.Window(rng)
	if window == nil {
		return nil
	}
	rows := make([][]float64, len(window))
	for i := range window {
		rows[i] = window[i].metrics
	}
	return rows
}

// MetricsAt returns a view of the metric vector recorded on date d.
func (r *Record) MetricsAt(d model.Date) ([]float64, bool) {
	i, ok := r.Find(d)
	if !ok {
		return nil, false
	}
	return r.entries[i].metrics, true
}

// Matrix returns every metric vector as a row, or nil when the record is empty.
func (r *Record) Matrix() [][]float64 {
	return r.Metrics(All())
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := &Record{entries: make([]Entry, len(r.entries))}
	for i, e := range r.entries {
		e.metrics = slices.Clone(e.metrics)
		out.entries[i] = e
	}
	return out
}

// Equal compares both records entry by entry.
func (r *Record) Equal(o *Record) bool {
	return slices.EqualFunc(r.entries, o.entries, Entry.Equal)
}
