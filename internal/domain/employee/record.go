package employee

import (
	"fmt"
	"slices"

	"github.com/okian/ewi/internal/domain/model"
	"github.com/okian/ewi/internal/domain/record"
)

// slot keeps the caller's JobID (with its label) next to the histories, since
// the map is keyed by formal code only.
type slot struct {
	job model.JobID
	wi  *WIRecord
}

// Record is an employee's workload history across every job held.
// It exclusively owns the histories it contains.
type Record struct {
	employee model.Employee
	jobs     map[string]*slot
}

// New returns a record for emp with no jobs.
func New(emp model.Employee) *Record {
	return &Record{employee: emp, jobs: make(map[string]*slot)}
}

// Who returns the employee.
func (r *Record) Who() model.Employee { return r.employee }

// Add inserts a copy of wi under job. It fails with ErrJobExists and leaves the
// existing data untouched if the job is already present.
func (r *Record) Add(job model.JobID, wi *WIRecord) error {
	if _, ok := r.jobs[job.Formal()]; ok {
		return fmt.Errorf("add job %s: %w", job, ErrJobExists)
	}
	if wi == nil {
		wi = &WIRecord{}
	}
	r.jobs[job.Formal()] = &slot{job: job, wi: wi.Clone()}
	return nil
}

// AddEntry appends e to the history selected by c for job, creating the job
// when absent. Record validation failures are returned with context and the
// structure is left unchanged.
func (r *Record) AddEntry(job model.JobID, c Category, e record.Entry) error {
	s, ok := r.jobs[job.Formal()]
	if !ok {
		wi := &WIRecord{}
		// the first append into an empty history cannot fail
		_ = wi.Record(c).Add(e)
		r.jobs[job.Formal()] = &slot{job: job, wi: wi}
		return nil
	}
	if err := s.wi.Record(c).Add(e); err != nil {
		return fmt.Errorf("job %s %s: %w", job, c, err)
	}
	return nil
}

// Get returns the histories for job. The returned pointer refers to the
// record's own data and may be used to mutate it in place.
func (r *Record) Get(job model.JobID) (*WIRecord, error) {
	s, ok := r.jobs[job.Formal()]
	if !ok {
		return nil, fmt.Errorf("get job %s: %w", job, ErrJobNotFound)
	}
	return s.wi, nil
}

// History returns the history for job and category c.
func (r *Record) History(job model.JobID, c Category) (*record.Record, error) {
	wi, err := r.Get(job)
	if err != nil {
		return nil, err
	}
	return wi.Record(c), nil
}

// Has reports whether job is present.
func (r *Record) Has(job model.JobID) bool {
	_, ok := r.jobs[job.Formal()]
	return ok
}

// Jobs returns the job identifiers sorted by formal code.
func (r *Record) Jobs() []model.JobID {
	out := make([]model.JobID, 0, len(r.jobs))
	for _, s := range r.jobs {
		out = append(out, s.job)
	}
	slices.SortFunc(out, model.JobID.Compare)
	return out
}

// Len returns the number of jobs.
func (r *Record) Len() int { return len(r.jobs) }

// Equal compares the employee, the set of jobs and every history.
func (r *Record) Equal(o *Record) bool {
	if !r.employee.Equal(o.employee) || len(r.jobs) != len(o.jobs) {
		return false
	}
	for code, s := range r.jobs {
		other, ok := o.jobs[code]
		if !ok || !s.wi.Equal(other.wi) {
			return false
		}
	}
	return true
}
