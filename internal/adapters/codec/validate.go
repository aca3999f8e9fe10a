package codec

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/okian/ewi/internal/domain/employee"
	"github.com/okian/ewi/internal/domain/model"
)

const lineBreaks = "\r\n"

// ValidateEmployee reports whether emp fits the header line: a non-empty
// id without the separator or line breaks, and a single-line name that does
// not start with whitespace.
func ValidateEmployee(emp model.Employee) error {
	id := emp.ID.Formal()
	switch {
	case id == "":
		return fmt.Errorf("%w: empty employee id", ErrUnencodable)
	case strings.ContainsRune(id, idDelim):
		return fmt.Errorf("%w: employee id %q contains %q", ErrUnencodable, id, idDelim)
	case strings.ContainsAny(id, lineBreaks):
		return fmt.Errorf("%w: employee id %q contains a line break", ErrUnencodable, id)
	case strings.ContainsAny(emp.Name, lineBreaks):
		return fmt.Errorf("%w: employee name %q contains a line break", ErrUnencodable, emp.Name)
	case strings.IndexFunc(emp.Name, unicode.IsSpace) == 0:
		return fmt.Errorf("%w: employee name %q starts with whitespace", ErrUnencodable, emp.Name)
	}
	return nil
}

// ValidateJob reports whether job is a single non-empty token.
func ValidateJob(job model.JobID) error {
	code := job.Formal()
	if code == "" {
		return fmt.Errorf("%w: empty job id", ErrUnencodable)
	}
	if strings.IndexFunc(code, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: job id %q contains whitespace", ErrUnencodable, code)
	}
	return nil
}

// ValidateNote reports whether note survives flattening.
func ValidateNote(note string) error {
	if strings.ContainsRune(note, Sentinel) {
		return fmt.Errorf("%w: note contains the line-break sentinel", ErrUnencodable)
	}
	return nil
}

// Validate checks every part of rec that Encode writes.
func Validate(rec *employee.Record) error {
	if err := ValidateEmployee(rec.Who()); err != nil {
		return err
	}
	for _, job := range rec.Jobs() {
		if err := ValidateJob(job); err != nil {
			return err
		}
		wi, err := rec.Get(job)
		if err != nil {
			return err
		}
		for _, c := range employee.Categories {
			for _, e := range wi.Record(c).Entries() {
				if err := ValidateNote(e.Note()); err != nil {
					return fmt.Errorf("%s %c %s: %w", job, c.Token(), e.Date(), err)
				}
			}
		}
	}
	return nil
}
