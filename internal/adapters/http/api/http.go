// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/okian/ewi/internal/adapters/codec"
	"github.com/okian/ewi/internal/adapters/repository"
	service "github.com/okian/ewi/internal/app"
	"github.com/okian/ewi/internal/domain/employee"
	"github.com/okian/ewi/internal/domain/model"
	"github.com/okian/ewi/internal/domain/record"
	"github.com/okian/ewi/internal/domain/scoring"
	"github.com/okian/ewi/internal/domain/survey"
	"github.com/okian/ewi/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreateEmployee(ctx context.Context, emp model.Employee) (*employee.Record, error)
	Employee(ctx context.Context, id model.EmployeeID) (*employee.Record, error)
	Employees(ctx context.Context, pattern string) ([]model.EmployeeID, error)
	Jobs(ctx context.Context, id model.EmployeeID) ([]model.JobID, error)

	AddEntry(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, e record.Entry) error
	SubmitSurvey(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, responses []string) (record.Entry, error)
	UpdateEntry(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, e record.Entry) error
	RemoveEntry(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, d model.Date) error
	Entries(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, rng record.DateRange) ([]record.Entry, error)
	Index(ctx context.Context, id model.EmployeeID, job model.JobID, c employee.Category, rng record.DateRange) (scoring.Result, error)
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRoutes mounts extra routes, such as API docs, on the root router.
func WithRoutes(fn func(chi.Router)) Option {
	return func(s *Server) {
		if fn != nil {
			s.extra = append(s.extra, fn)
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	employeeHandler *EmployeeHandler
	entryHandler    *EntryHandler
	extra           []func(chi.Router)
	logger          logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(),
		employeeHandler: NewEmployeeHandler(deps),
		entryHandler:    NewEntryHandler(deps),
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
//
//	GET    /healthz
//	GET    /metrics
//	GET    /employees?pattern=
//	POST   /employees
//	GET    /employees/{employeeID}
//	GET    /employees/{employeeID}/jobs/{jobID}/{category}?from=&to=
//	POST   /employees/{employeeID}/jobs/{jobID}/{category}
//	POST   /employees/{employeeID}/jobs/{jobID}/{category}/survey
//	GET    /employees/{employeeID}/jobs/{jobID}/{category}/index?from=&to=
//	PUT    /employees/{employeeID}/jobs/{jobID}/{category}/{date}
//	DELETE /employees/{employeeID}/jobs/{jobID}/{category}/{date}
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(MetricsMiddleware(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Method(http.MethodGet, "/metrics", s.healthHandler.MetricsHandler())

	r.Route("/employees", func(r chi.Router) {
		r.Get("/", s.employeeHandler.HandleList)
		r.Post("/", s.employeeHandler.HandleCreate)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.Get("/", s.employeeHandler.HandleGet)
			r.Route("/jobs/{jobID}/{category}", func(r chi.Router) {
				r.Get("/", s.entryHandler.HandleList)
				r.Post("/", s.entryHandler.HandleAdd)
				r.Post("/survey", s.entryHandler.HandleSurvey)
				r.Get("/index", s.entryHandler.HandleIndex)
				r.Put("/{date}", s.entryHandler.HandleUpdate)
				r.Delete("/{date}", s.entryHandler.HandleDelete)
			})
		})
	})

	for _, fn := range s.extra {
		fn(r)
	}
	return r
}

var validate = validator.New()

// decodeJSON decodes and validates a request body.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := http.StatusText(status)
	if err != nil && status < http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: RequestID(r.Context())})
}

// classify maps domain errors to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, model.ErrInvalidDate),
		errors.Is(err, employee.ErrUnknownCategory), errors.Is(err, repository.ErrInvalidID),
		errors.Is(err, repository.ErrBadPattern), errors.Is(err, codec.ErrUnencodable):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrEmployeeNotFound):
		return http.StatusNotFound, "employee_not_found"
	case errors.Is(err, employee.ErrJobNotFound), errors.Is(err, service.ErrUnknownJob):
		return http.StatusNotFound, "job_not_found"
	case errors.Is(err, service.ErrEntryNotFound):
		return http.StatusNotFound, "entry_not_found"
	case errors.Is(err, service.ErrEmployeeExists):
		return http.StatusConflict, "employee_exists"
	case errors.Is(err, record.ErrDisorderedDate):
		return http.StatusConflict, "disordered_date"
	case errors.Is(err, record.ErrInconsistentMetrics), errors.Is(err, survey.ErrArityMismatch),
		errors.Is(err, survey.ErrResponseCount), errors.Is(err, scoring.ErrDimensionMismatch):
		return http.StatusUnprocessableEntity, "inconsistent_metrics"
	case errors.Is(err, survey.ErrOutOfScale), errors.Is(err, survey.ErrInvalidMetric):
		return http.StatusUnprocessableEntity, "invalid_metric"
	case errors.Is(err, scoring.ErrNoData):
		return http.StatusUnprocessableEntity, "no_data"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
