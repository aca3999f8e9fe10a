// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the command line.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/ewi/internal/adapters/codec"
	"github.com/okian/ewi/internal/adapters/repository"
	"github.com/okian/ewi/internal/domain/employee"
	"github.com/okian/ewi/internal/domain/model"
	"github.com/okian/ewi/internal/domain/record"
	"github.com/okian/ewi/internal/domain/scoring"
	"github.com/okian/ewi/internal/domain/survey"
	"github.com/okian/ewi/pkg/logger"
	"github.com/okian/ewi/pkg/metrics"
)

// Sentinel kinds for service errors.
var (
	ErrNoStore          = errors.New("no history store configured")
	ErrEmployeeExists   = errors.New("employee already exists")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrUnknownJob       = errors.New("unknown job")
	ErrInvalidProfile   = errors.New("invalid job definition")
	ErrEntryNotFound    = errors.New("entry not found")
)

// Service implements survey intake and workload index queries over a Store.
type Service struct {
	// mu serializes load-modify-save cycles and guards profiles.
	mu sync.RWMutex

	store    repository.Store
	scorer   scoring.Scorer
	profiles map[string]survey.Profile
	jobDir   string

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the history store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithScorer replaces the default index scorer.
func WithScorer(scorer scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithJobDir sets the directory of job definitions loaded by Start.
func WithJobDir(dir string) Option {
	return func(s *Service) {
		s.jobDir = dir
	}
}

// WithProfiles registers job definitions up front.
func WithProfiles(profiles ...survey.Profile) Option {
	return func(s *Service) {
		for _, p := range profiles {
			s.profiles[p.Job.Formal()] = p
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		scorer:   scoring.NewIndexScorer(),
		profiles: make(map[string]survey.Profile),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads job definitions and refreshes gauges.
func (s *Service) Start(ctx context.Context) error {
	if s.store == nil {
		return ErrNoStore
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "starting workload index service...")
	if s.jobDir != "" {
		n, err := s.LoadProfiles(ctx, s.jobDir)
		switch {
		case errors.Is(err, os.ErrNotExist):
			s.logger.Warn(ctx, "job directory not found", logger.String("dir", s.jobDir))
		case err != nil:
			return err
		default:
			s.logger.Info(ctx, "loaded job definitions", logger.Int("count", n), logger.String("dir", s.jobDir))
		}
	}
	ids, err := s.store.List(ctx, "")
	if err != nil {
		return fmt.Errorf("list employees: %w", err)
	}
	metrics.UpdateEmployees(len(ids))
	s.logger.Info(ctx, "workload index service started", logger.Int("employees", len(ids)))
	return nil
}

// Stop marks the service stopped. The file store holds no open handles.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "workload index service stopped")
}

// RegisterProfile adds or replaces a job definition.
func (s *Service) RegisterProfile(p survey.Profile) error {
	if p.Job.IsZero() || p.MetricCount() == 0 || len(p.Averages) != p.MetricCount() {
		return fmt.Errorf("%w: job %q with %d questions", ErrInvalidProfile, p.Job.Formal(), p.MetricCount())
	}
	s.mu.Lock()
	s.profiles[p.Job.Formal()] = p
	n := len(s.profiles)
	s.mu.Unlock()
	metrics.UpdateProfiles(n)
	return nil
}

// LoadProfiles registers every .txt, .yaml and .yml job definition in dir.
func (s *Service) LoadProfiles(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".yaml", ".yml":
		default:
			continue
		}
		if e.IsDir() {
			continue
		}
		p, err := survey.LoadProfile(filepath.Join(dir, e.Name()))
		if err != nil {
			return n, fmt.Errorf("job definition %s: %w", e.Name(), err)
		}
		if err := s.RegisterProfile(p); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Profile returns the definition for job.
func (s *Service) Profile(job model.JobID) (survey.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[job.Formal()]
	if !ok {
		return survey.Profile{}, fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}
	return p, nil
}

// Profiles returns every registered definition ordered by job code.
func (s *Service) Profiles() []survey.Profile {
	s.mu.RLock()
	out := make([]survey.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b survey.Profile) int { return a.Job.Compare(b.Job) })
	return out
}

// CreateEmployee stores an empty history for emp.
func (s *Service) CreateEmployee(ctx context.Context, emp model.Employee) (*employee.Record, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	if err := codec.ValidateEmployee(emp); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.store.Exists(ctx, emp.ID)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeExists, emp.ID)
	}
	rec := employee.New(emp)
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "employee created", logger.String("employee", emp.ID.Formal()), logger.String("name", emp.Name))
	if ids, err := s.store.List(ctx, ""); err == nil {
		metrics.UpdateEmployees(len(ids))
	}
	return rec, nil
}

// Import stores rec as its employee's history. An existing history is kept,
// and ErrEmployeeExists returned, unless replace is set.
func (s *Service) Import(ctx context.Context, rec *employee.Record, replace bool) error {
	if s.store == nil {
		return ErrNoStore
	}
	if err := codec.Validate(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := rec.Who().ID
	if !replace {
		ok, err := s.store.Exists(ctx, id)
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("%w: %s", ErrEmployeeExists, id)
		}
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return err
	}
	s.logger.Info(ctx, "employee imported", logger.String("employee", id.Formal()), logger.Int("jobs", rec.Len()))
	return nil
}

// Employee returns the stored history for id.
func (s *Service) Employee(ctx context.Context, id model.EmployeeID) (*employee.Record, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx, id)
}

// Employees lists stored employee IDs matching a glob pattern.
func (s *Service) Employees(ctx context.Context, pattern string) ([]model.EmployeeID, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.List(ctx, pattern)
}

// Jobs returns the jobs held by employee id, labelled with their titles when known.
func (s *Service) Jobs(ctx context.Context, id model.EmployeeID) ([]model.JobID, error) {
	rec, err := s.Employee(ctx, id)
	if err != nil {
		return nil, err
	}
	jobs := rec.Jobs()
	for i, j := range jobs {
		if p, err := s.Profile(j); err == nil && j.Label() == "" {
			jobs[i] = j.WithLabel(p.Title)
		}
	}
	return jobs, nil
}

// AddEntry validates e and appends it to the employee's history.
func (s *Service) AddEntry(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, e record.Entry) error {
	if err := s.validate(job, c, e); err != nil {
		return s.rejected(ctx, id, job, c, err)
	}
	return s.modify(ctx, id, func(rec *employee.Record) error {
		if err := rec.AddEntry(job, c, e); err != nil {
			return s.rejected(ctx, id, job, c, err)
		}
		metrics.RecordEntryAdded(string(c.Token()))
		return nil
	})
}

// SubmitSurvey converts raw form answers into an entry and adds it.
// responses holds the date, one answer per question, then the notes.
func (s *Service) SubmitSurvey(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, responses []string) (record.Entry, error) {
	count := len(survey.PersonalQuestions())
	if c == employee.Technical {
		p, err := s.Profile(job)
		if err != nil {
			return record.Entry{}, err
		}
		count = p.MetricCount()
	}
	res, err := survey.NewResults(responses, count)
	if err != nil {
		return record.Entry{}, s.rejected(ctx, id, job, c, err)
	}
	e, err := res.Entry()
	if err != nil {
		return record.Entry{}, s.rejected(ctx, id, job, c, err)
	}
	if err := s.AddEntry(ctx, id, job, c, e); err != nil {
		return record.Entry{}, err
	}
	return e, nil
}

// UpdateEntry replaces the entry on e's date, or inserts it in date order.
func (s *Service) UpdateEntry(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, e record.Entry) error {
	if err := s.validate(job, c, e); err != nil {
		return s.rejected(ctx, id, job, c, err)
	}
	return s.modify(ctx, id, func(rec *employee.Record) error {
		h, err := rec.History(job, c)
		if errors.Is(err, employee.ErrJobNotFound) {
			return rec.AddEntry(job, c, e)
		}
		if err != nil {
			return err
		}
		if !h.IsEmpty() && h.MetricDim() != e.Dim() {
			return s.rejected(ctx, id, job, c, fmt.Errorf("%w: have %d metrics, got %d",
				record.ErrInconsistentMetrics, h.MetricDim(), e.Dim()))
		}
		h.Update(e)
		return nil
	})
}

// RemoveEntry deletes the entry recorded on d.
func (s *Service) RemoveEntry(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, d model.Date) error {
	return s.modify(ctx, id, func(rec *employee.Record) error {
		h, err := rec.History(job, c)
		if err != nil {
			return err
		}
		if _, ok := h.Find(d); !ok {
			return fmt.Errorf("%w: %s %s on %s", ErrEntryNotFound, job, c, d)
		}
		h.Remove(d)
		metrics.RecordEntryRemoved(string(c.Token()))
		return nil
	})
}

// Entries returns copies of the entries that fall in rng.
func (s *Service) Entries(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, rng record.DateRange) ([]record.Entry, error) {
	rec, err := s.Employee(ctx, id)
	if err != nil {
		return nil, err
	}
	h, err := rec.History(job, c)
	if err != nil {
		return nil, err
	}
	window := h.Window(rng)
	out := make([]record.Entry, len(window))
	for i, e := range window {
		out[i] = record.NewEntry(e.Date(), e.Note(), slices.Clone(e.Metrics()))
	}
	return out, nil
}

// Index computes the workload index over rng. Technical histories compare
// against the job's averages and personal ones against the survey's ideal mean.
func (s *Service) Index(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, rng record.DateRange) (scoring.Result, error) {
	start := time.Now()
	baseline := survey.PersonalBaseline()
	if c == employee.Technical {
		p, err := s.Profile(job)
		if err != nil {
			return scoring.Result{}, err
		}
		baseline = p.Averages
	}
	rec, err := s.Employee(ctx, id)
	if err != nil {
		return scoring.Result{}, err
	}
	h, err := rec.History(job, c)
	if err != nil {
		return scoring.Result{}, err
	}
	res, err := s.scorer.Score(ctx, scoring.Input{Rows: h.Metrics(rng), Baseline: baseline})
	if err != nil {
		return scoring.Result{}, fmt.Errorf("index %s %s %s %s: %w", id, job, c, rng, err)
	}
	metrics.RecordIndexComputed(string(c.Token()), float64(time.Since(start).Microseconds())/1000)
	s.logger.Debug(ctx, "index computed",
		logger.String("employee", id.Formal()),
		logger.String("job", job.Formal()),
		logger.Stringer("category", c),
		logger.Stringer("range", rng),
		logger.Any("index", res.Index),
	)
	return res, nil
}

func (s *Service) validate(job model.JobID, c employee.Category, e record.Entry) error {
	if err := codec.ValidateJob(job); err != nil {
		return err
	}
	if err := codec.ValidateNote(e.Note()); err != nil {
		return err
	}
	if c == employee.Personal {
		return survey.ValidatePersonal(e)
	}
	p, err := s.Profile(job)
	if errors.Is(err, ErrUnknownJob) {
		// unknown jobs still get arity checks from the history itself
		return nil
	}
	if err != nil {
		return err
	}
	return p.ValidateTechnical(e)
}

func (s *Service) load(ctx context.Context, id model.EmployeeID) (*employee.Record, error) {
	rec, err := s.store.Load(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
	}
	return rec, err
}

// modify runs fn on the stored history for id and saves the result if fn succeeds.
func (s *Service) modify(ctx context.Context, id model.EmployeeID, fn func(*employee.Record) error) error {
	if s.store == nil {
		return ErrNoStore
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(rec); err != nil {
		return err
	}
	return s.store.Save(ctx, rec)
}

func (s *Service) rejected(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, err error) error {
	reason := "invalid"
	switch {
	case errors.Is(err, record.ErrDisorderedDate):
		reason = "disordered_date"
	case errors.Is(err, record.ErrInconsistentMetrics), errors.Is(err, survey.ErrArityMismatch):
		reason = "inconsistent_metrics"
	case errors.Is(err, survey.ErrOutOfScale):
		reason = "out_of_scale"
	case errors.Is(err, survey.ErrResponseCount):
		reason = "response_count"
	case errors.Is(err, codec.ErrUnencodable):
		reason = "unencodable"
	}
	metrics.RecordEntryRejected(reason)
	s.logger.Warn(ctx, "entry rejected",
		logger.String("employee", id.Formal()),
		logger.String("job", job.Formal()),
		logger.Stringer("category", c),
		logger.String("reason", reason),
		logger.Error(err),
	)
	return err
}
